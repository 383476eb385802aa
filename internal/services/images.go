package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const MaxImageSize = 5 << 20

var (
	ErrInvalidImage  = errors.New("upload a valid image")
	ErrImageTooLarge = errors.New("image is larger than 5 MiB")
)

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageStore keeps post images under Root/posts. Paths handed out are
// relative to Root and use forward slashes, so they can be appended to the
// media URL as is.
type ImageStore struct {
	Root string
}

func NewImageStore(root string) *ImageStore {
	return &ImageStore{Root: root}
}

// Save validates the upload and writes it to disk.
func (s *ImageStore) Save(header *multipart.FileHeader) (string, error) {
	if header.Size > MaxImageSize {
		return "", ErrImageTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("detect image type: %w", err)
	}
	ext, ok := imageTypes[mtype.String()]
	if !ok {
		return "", ErrInvalidImage
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.NewString(), ext)
	rel := path.Join("posts", name)

	dir := filepath.Join(s.Root, "posts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer dst.Close()

	// Size on the header comes from the client; enforce it on the copy too.
	n, err := io.Copy(dst, io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write image: %w", err)
	}
	if n > MaxImageSize {
		os.Remove(dst.Name())
		return "", ErrImageTooLarge
	}
	return rel, nil
}

// Remove deletes a stored image. Missing files are ignored.
func (s *ImageStore) Remove(rel string) error {
	if rel == "" || strings.Contains(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image %s: %w", rel, err)
	}
	return nil
}
