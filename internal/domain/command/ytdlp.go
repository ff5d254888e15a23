package command

// General yt-dlp flags.
const (
	AfterMove         = "after_move:%(filepath)s"
	CookiePath        = "--cookies"
	FilenameSyntax    = "%(title)s.%(ext)s"
	Format            = "-f"
	NewlineProgress   = "--newline"
	NoPlaylist        = "--no-playlist"
	Output            = "-o"
	Print             = "--print"
	RestrictFilenames = "--restrict-filenames"
	YTDLP             = "yt-dlp"
)

// Interpreter-hosted fallback when the yt-dlp binary is absent.
const (
	Python       = "python3"
	PyModuleFlag = "-m"
	PyModuleName = "yt_dlp"
)

// Metadata-only mode.
const (
	SkipVideo = "--skip-download"

	// Tab-separated so titles containing pipes or colons survive the split.
	MetaPrintFields = "%(title)s\t%(uploader)s\t%(channel)s\t%(uploader_id)s\t%(upload_date)s\t%(thumbnail)s"
)

// Search directives.
const (
	SearchOnePrefix = "ytsearch1:"
	SearchPrefix    = "ytsearch"
	OfficialBias    = "official video"
)
