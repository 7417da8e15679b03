package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

const MaxPhotoBytes = 5 << 20

var (
	ErrUnsupportedType = errors.New("photo must be a JPEG, PNG or WebP image")
	ErrTooLarge        = errors.New("photo must be 5 MB or smaller")
	ErrDisabled        = errors.New("photo uploads are not configured")
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Uploader is the part of the Cloudinary upload API used here. *uploader.API satisfies it.
type Uploader interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// Photo is a stored image.
type Photo struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// PhotoService stores vehicle photos.
type PhotoService interface {
	UploadVehiclePhoto(ctx context.Context, subscriberID, vehicleID string, file io.Reader, size int64) (*Photo, error)
	DeletePhoto(ctx context.Context, publicID string) error
	DeleteVehiclePhoto(ctx context.Context, subscriberID, vehicleID string) error
}

// CloudinaryPhotoService keeps one photo per vehicle, replacing it on re-upload.
type CloudinaryPhotoService struct {
	Uploader Uploader // nil disables uploads
	Folder   string
	Logger   *zap.Logger
}

func NewPhotoService(u Uploader, folder string, logger *zap.Logger) *CloudinaryPhotoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloudinaryPhotoService{Uploader: u, Folder: folder, Logger: logger}
}

// DetectImageType sniffs the content type from the first bytes of r.
func DetectImageType(r *bufio.Reader) (string, error) {
	head, err := r.Peek(512)
	if err != nil && err != io.EOF && !errors.Is(err, bufio.ErrBufferFull) {
		return "", err
	}
	ct := http.DetectContentType(head)
	if !allowedTypes[ct] {
		return ct, ErrUnsupportedType
	}
	return ct, nil
}

func (s *CloudinaryPhotoService) UploadVehiclePhoto(ctx context.Context, subscriberID, vehicleID string, file io.Reader, size int64) (*Photo, error) {
	if s.Uploader == nil {
		return nil, ErrDisabled
	}
	if size > MaxPhotoBytes {
		return nil, ErrTooLarge
	}
	br := bufio.NewReader(io.LimitReader(file, MaxPhotoBytes+1))
	if _, err := DetectImageType(br); err != nil {
		return nil, err
	}

	params := uploader.UploadParams{
		Folder:       s.Folder,
		PublicID:     vehiclePhotoName(subscriberID, vehicleID),
		Overwrite:    api.Bool(true),
		ResourceType: "image",
	}
	result, err := s.Uploader.Upload(ctx, br, params)
	if err != nil {
		return nil, fmt.Errorf("failed to upload vehicle photo: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload vehicle photo: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return nil, errors.New("failed to upload vehicle photo: no URL returned")
	}
	s.Logger.Info("vehicle photo uploaded", zap.String("publicId", result.PublicID))
	return &Photo{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

func vehiclePhotoName(subscriberID, vehicleID string) string {
	return fmt.Sprintf("%s-%s", subscriberID, vehicleID)
}

// DeleteVehiclePhoto removes the photo stored for a vehicle, if any.
func (s *CloudinaryPhotoService) DeleteVehiclePhoto(ctx context.Context, subscriberID, vehicleID string) error {
	publicID := vehiclePhotoName(subscriberID, vehicleID)
	if s.Folder != "" {
		publicID = s.Folder + "/" + publicID
	}
	return s.DeletePhoto(ctx, publicID)
}

func (s *CloudinaryPhotoService) DeletePhoto(ctx context.Context, publicID string) error {
	if s.Uploader == nil {
		return ErrDisabled
	}
	if _, err := s.Uploader.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}
