package utils

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

func getCloudinaryInstance() (*cloudinary.Cloudinary, error) {
	return cloudinary.NewFromParams(
		os.Getenv("CLOUDINARY_CLOUD_NAME"),
		os.Getenv("CLOUDINARY_API_KEY"),
		os.Getenv("CLOUDINARY_API_SECRET"),
	)
}

// UploadEventImage stores an event image and returns its public URL.
func UploadEventImage(file multipart.File, fileHeader *multipart.FileHeader) (string, error) {
	return uploadToFolder(file, "events")
}

// UploadForumImage stores a forum post image and returns its public URL.
func UploadForumImage(file multipart.File, fileHeader *multipart.FileHeader) (string, error) {
	return uploadToFolder(file, "forums")
}

func uploadToFolder(file multipart.File, folder string) (string, error) {
	cld, err := getCloudinaryInstance()
	if err != nil {
		return "", fmt.Errorf("cloudinary config error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	uploadResp, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: folder,
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %v", err)
	}

	return uploadResp.SecureURL, nil
}

// DeleteImage removes an image from Cloudinary given its full URL.
func DeleteImage(imageURL string) error {
	cld, err := getCloudinaryInstance()
	if err != nil {
		return fmt.Errorf("cloudinary config error: %v", err)
	}

	publicID, err := extractPublicID(imageURL)
	if err != nil {
		return fmt.Errorf("could not extract public ID: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err = cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("delete error: %v", err)
	}

	return nil
}

// extractPublicID recovers the Cloudinary public ID from a delivery URL.
// Example: https://res.cloudinary.com/demo/image/upload/v1234567890/events/abc123.jpg
func extractPublicID(imageURL string) (string, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return "", err
	}

	parts := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")
	upload := -1
	for i, p := range parts {
		if p == "upload" {
			upload = i
			break
		}
	}
	if upload == -1 || upload+1 >= len(parts) {
		return "", fmt.Errorf("invalid cloudinary URL format")
	}

	// Drop the version segment (e.g. v1234567890).
	rest := parts[upload+1:]
	if len(rest) > 1 && strings.HasPrefix(rest[0], "v") {
		rest = rest[1:]
	}

	publicID := path.Join(rest...)
	return strings.TrimSuffix(publicID, path.Ext(publicID)), nil
}
