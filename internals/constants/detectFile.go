package constants

import (
	"path/filepath"
	"strings"
)

type FileKind int

const (
	FileKindImage    FileKind = 1
	FileKindPDF      FileKind = 2
	FileKindDocument FileKind = 3
	FileKindArchive  FileKind = 4
	FileKindSlides   FileKind = 5
	FileKindVideo    FileKind = 6
	FileKindUnknown  FileKind = 99
)

func DetectFileKindFromExt(filename string) FileKind {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
		return FileKindImage
	case ".pdf":
		return FileKindPDF
	case ".doc", ".docx", ".txt", ".md":
		return FileKindDocument
	case ".zip", ".rar", ".7z", ".tar", ".gz":
		return FileKindArchive
	case ".ppt", ".pptx":
		return FileKindSlides
	case ".mp4", ".mov", ".avi":
		return FileKindVideo
	default:
		return FileKindUnknown
	}
}

// Certificate scans are images or PDFs. Works may be anything we recognise.
func IsAllowedAttachment(filename string) bool {
	k := DetectFileKindFromExt(filename)
	return k == FileKindImage || k == FileKindPDF
}

func IsAllowedWorks(filename string) bool {
	return DetectFileKindFromExt(filename) != FileKindUnknown
}
