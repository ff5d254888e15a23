package command

// ffmpeg invocation values for remuxing and HLS segmenting.
const (
	FFmpeg = "ffmpeg"

	Overwrite  = "-y"
	HideBanner = "-hide_banner"
	LogLevel   = "-loglevel"
	LogError   = "error"
	Input      = "-i"

	CodecCopy   = "-c"
	CopyVal     = "copy"
	MovFlags    = "-movflags"
	FastStart   = "+faststart"
	MP4Ext      = ".mp4"
	RemuxTmpExt = ".remux.tmp.mp4"

	HLSTime            = "-hls_time"
	HLSTimeVal         = "10"
	HLSPlaylistType    = "-hls_playlist_type"
	HLSPlaylistVOD     = "vod"
	HLSFlags           = "-hls_flags"
	HLSIndependent     = "independent_segments"
	HLSSegmentFilename = "-hls_segment_filename"
	HLSSegmentPattern  = "segment_%03d.ts"
	HLSPlaylistName    = "playlist.m3u8"
)
