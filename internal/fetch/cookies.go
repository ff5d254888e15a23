package fetch

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"grabarr/internal/logging"

	"github.com/browserutils/kooky"
	// Register all browser cookie store backends.
	_ "github.com/browserutils/kooky/browser/all"
)

// ExportBrowserCookies reads valid browser cookies for the given domain and
// writes them to a Netscape-format cookie file the fetch tool can consume
// via --cookies. Returns the written path, or "" when no cookies were found.
func ExportBrowserCookies(ctx context.Context, domain, cookieFilePath string) (string, error) {
	kookyCookies, err := kooky.ReadCookies(ctx, kooky.Valid, kooky.Domain(domain))
	if err != nil {
		return "", fmt.Errorf("failed reading browser cookies for %q: %w", domain, err)
	}
	if len(kookyCookies) == 0 {
		logging.I("No browser cookies found for %s, skipping cookie file", domain)
		return "", nil
	}

	cookies := convertToHTTPCookies(kookyCookies)
	if err := saveCookiesToFile(cookies, domain, cookieFilePath); err != nil {
		return "", err
	}

	logging.I("Exported %d browser cookies for %s to %s", len(cookies), domain, cookieFilePath)
	return cookieFilePath, nil
}

// convertToHTTPCookies converts kooky cookies to http.Cookie format.
func convertToHTTPCookies(kookyCookies []*kooky.Cookie) []*http.Cookie {
	httpCookies := make([]*http.Cookie, len(kookyCookies))
	for i, c := range kookyCookies {
		httpCookies[i] = &http.Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Domain:  c.Domain,
			Secure:  c.Secure,
			Expires: c.Expires,
		}
	}
	return httpCookies
}

// saveCookiesToFile saves the cookies to a file in Netscape format.
func saveCookiesToFile(cookies []*http.Cookie, fallbackDomain, cookieFilePath string) error {
	file, err := os.Create(cookieFilePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.E("failed to close file %q due to error: %v", cookieFilePath, err)
		}
	}()

	// Netscape cookie file header
	if _, err := file.WriteString("# Netscape HTTP Cookie File\n# This is a generated file! Do not edit.\n\n"); err != nil {
		return err
	}

	for _, cookie := range cookies {
		domain := cookie.Domain
		if domain == "" {
			domain = fallbackDomain
		}

		includeSubdomains := "FALSE"
		if strings.HasPrefix(domain, ".") {
			includeSubdomains = "TRUE"
		}

		secure := "FALSE"
		if cookie.Secure {
			secure = "TRUE"
		}

		var expiry int64
		if !cookie.Expires.IsZero() {
			expiry = cookie.Expires.Unix()
		}

		line := strings.Join([]string{
			domain,
			includeSubdomains,
			cookie.Path,
			secure,
			strconv.FormatInt(expiry, 10),
			cookie.Name,
			cookie.Value,
		}, "\t")

		if _, err := file.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}
