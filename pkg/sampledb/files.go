package sampledb

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is a file attached to an object. Storage is "local", "database" or
// "url"; URL is only set for url storage.
type File struct {
	ObjectID         int    `json:"object_id"`
	FileID           int    `json:"file_id"`
	Storage          string `json:"storage"`
	OriginalFileName string `json:"original_file_name"`
	Base64Content    string `json:"base64_content"`
	URL              string `json:"url"`
}

func (f File) String() string {
	return fmt.Sprintf("File %d, Name %s", f.FileID, f.OriginalFileName)
}

// Content decodes Base64Content.
func (f File) Content() ([]byte, error) {
	return base64.StdEncoding.DecodeString(f.Base64Content)
}

func (s *ObjectsService) Files(ctx context.Context, objectID int) ([]File, error) {
	if err := requireID("object_id", objectID); err != nil {
		return nil, err
	}
	return getList[File](ctx, s.client, fmt.Sprintf("objects/%d/files", objectID), nil)
}

func (s *ObjectsService) File(ctx context.Context, objectID, fileID int) (*File, error) {
	if err := requireID("object_id", objectID); err != nil {
		return nil, err
	}
	// file ids start at zero
	if fileID < 0 {
		return nil, invalidArgument("file_id must not be negative, got %d", fileID)
	}
	return getOne[File](ctx, s.client, fmt.Sprintf("objects/%d/files/%d", objectID, fileID))
}

// UploadFile reads the file at path into memory and uploads it with local
// storage. An empty name uses the base name of path.
func (s *ObjectsService) UploadFile(ctx context.Context, objectID int, path, name string) (*Response, error) {
	if err := requireID("object_id", objectID); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, invalidArgument("file path is empty")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	if name == "" {
		name = filepath.Base(path)
	}
	return s.UploadFileReader(ctx, objectID, name, f)
}

// UploadFileReader reads r fully and uploads it as name with local storage.
func (s *ObjectsService) UploadFileReader(ctx context.Context, objectID int, name string, r io.Reader) (*Response, error) {
	if err := requireID("object_id", objectID); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, invalidArgument("file name is empty")
	}
	if r == nil {
		return nil, invalidArgument("file reader is nil")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload %q: %w", name, err)
	}
	return s.client.Post(ctx, fmt.Sprintf("objects/%d/files", objectID), map[string]string{
		"storage":            "local",
		"original_file_name": name,
		"base64_content":     base64.StdEncoding.EncodeToString(data),
	})
}

// PostLink attaches a URL to the object.
func (s *ObjectsService) PostLink(ctx context.Context, objectID int, link string) (*Response, error) {
	if err := requireID("object_id", objectID); err != nil {
		return nil, err
	}
	if link == "" {
		return nil, invalidArgument("url is empty")
	}
	return s.client.Post(ctx, fmt.Sprintf("objects/%d/files", objectID), map[string]string{
		"storage": "url",
		"url":     link,
	})
}
