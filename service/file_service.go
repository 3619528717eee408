package service

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/PhilipWidoff/SmartPDF/utils"
)

// FileService stores uploaded PDFs in the documents directory. Indexing stays
// lazy: the first query against an uploaded document builds its index.
type FileService struct {
	documentsDir string
}

func NewFileService(documentsDir string) *FileService {
	return &FileService{
		documentsDir: documentsDir,
	}
}

// SaveUpload validates and persists an uploaded PDF. Returns the stored file
// name, which doubles as the document identifier.
func (s *FileService) SaveUpload(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" {
		return "", fmt.Errorf("unsupported file type %s, only PDF is accepted", ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	storedName, err := utils.SaveFileWithTimestamp(src, s.documentsDir, file.Filename)
	if err != nil {
		return "", err
	}
	return storedName, nil
}
