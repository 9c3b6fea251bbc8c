package buf

// FileFormat selects the end-of-line convention of a buffer.
type FileFormat int

const (
	// FileFormatUnix terminates lines with LF.
	FileFormatUnix FileFormat = iota
	// FileFormatDos terminates lines with CRLF.
	FileFormatDos
	// FileFormatMac terminates lines with CR.
	FileFormatMac
)

// String implements fmt.Stringer.
func (f FileFormat) String() string {
	switch f {
	case FileFormatUnix:
		return "unix"
	case FileFormatDos:
		return "dos"
	case FileFormatMac:
		return "mac"
	default:
		return "unknown"
	}
}

// EOL returns the end-of-line rune sequence for the format.
func (f FileFormat) EOL() []rune {
	switch f {
	case FileFormatDos:
		return []rune{'\r', '\n'}
	case FileFormatMac:
		return []rune{'\r'}
	default:
		return []rune{'\n'}
	}
}

// FileEncoding names the on-disk encoding of a buffer.
type FileEncoding int

const (
	FileEncodingUtf8 FileEncoding = iota
)

// String implements fmt.Stringer.
func (e FileEncoding) String() string {
	if e == FileEncodingUtf8 {
		return "utf-8"
	}
	return "unknown"
}

// Options is the per-buffer option block.
type Options struct {
	// TabStop is the display width of a horizontal tab.
	TabStop int
	// ExpandTab inserts spaces instead of a tab character.
	ExpandTab bool
	// ShiftWidth is the indent step.
	ShiftWidth int
	// FileEncoding is the on-disk encoding.
	FileEncoding FileEncoding
	// FileFormat is the end-of-line convention.
	FileFormat FileFormat
}

// DefaultOptions returns the option block new buffers start with.
func DefaultOptions() Options {
	return Options{
		TabStop:      8,
		ExpandTab:    false,
		ShiftWidth:   8,
		FileEncoding: FileEncodingUtf8,
		FileFormat:   FileFormatUnix,
	}
}
