// internal/messaging/storage.go

package messaging

import (
    "bytes"
    "context"
    "fmt"
    "io"
    "os"
    "path/filepath"
    "strings"
    "time"

    "github.com/aws/aws-sdk-go/aws"
    "github.com/aws/aws-sdk-go/aws/session"
    "github.com/aws/aws-sdk-go/service/s3"
    "github.com/google/uuid"
)

// StorageService stores chat media and returns a URL the message can
// reference
type StorageService interface {
    UploadChatMedia(ctx context.Context, file io.Reader, filename, contentType string) (string, error)
    DeleteChatMedia(ctx context.Context, mediaURL string) error
}

var allowedMediaTypes = []string{
    "image/jpeg", "image/png", "image/gif", "image/webp",
    "video/mp4", "video/quicktime", "video/webm",
    "audio/mpeg", "audio/wav", "audio/ogg",
}

func isAllowedMediaType(contentType string) bool {
    for _, allowed := range allowedMediaTypes {
        if allowed == contentType {
            return true
        }
    }
    return false
}

func mediaKey(filename string) string {
    return fmt.Sprintf("chat/%s/%s%s",
        time.Now().Format("2006/01/02"),
        uuid.New().String(),
        filepath.Ext(filename),
    )
}

type s3Storage struct {
    s3Client    *s3.S3
    bucketName  string
    cdnURL      string
    maxFileSize int64
}

// NewS3Storage creates an S3-backed media store
func NewS3Storage(awsSession *session.Session, bucketName, cdnURL string, maxFileSize int64) StorageService {
    return &s3Storage{
        s3Client:    s3.New(awsSession),
        bucketName:  bucketName,
        cdnURL:      cdnURL,
        maxFileSize: maxFileSize,
    }
}

func (s *s3Storage) UploadChatMedia(ctx context.Context, file io.Reader, filename, contentType string) (string, error) {
    if !isAllowedMediaType(contentType) {
        return "", fmt.Errorf("file type %s not allowed", contentType)
    }

    buf := new(bytes.Buffer)
    size, err := io.Copy(buf, io.LimitReader(file, s.maxFileSize+1))
    if err != nil {
        return "", fmt.Errorf("failed to read file: %v", err)
    }
    if size > s.maxFileSize {
        return "", fmt.Errorf("file exceeds maximum allowed size %d", s.maxFileSize)
    }

    key := mediaKey(filename)
    _, err = s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
        Bucket:        aws.String(s.bucketName),
        Key:           aws.String(key),
        Body:          bytes.NewReader(buf.Bytes()),
        ContentType:   aws.String(contentType),
        ContentLength: aws.Int64(size),
        ACL:           aws.String("public-read"),
        Metadata: map[string]*string{
            "uploaded-at": aws.String(time.Now().Format(time.RFC3339)),
            "file-name":   aws.String(filename),
        },
    })
    if err != nil {
        return "", fmt.Errorf("failed to upload to S3: %v", err)
    }

    return fmt.Sprintf("%s/%s", s.cdnURL, key), nil
}

func (s *s3Storage) DeleteChatMedia(ctx context.Context, mediaURL string) error {
    key := strings.TrimPrefix(mediaURL, s.cdnURL+"/")

    _, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
        Bucket: aws.String(s.bucketName),
        Key:    aws.String(key),
    })
    return err
}

// localStorage writes media to disk for development runs without S3
type localStorage struct {
    dir         string
    baseURL     string
    maxFileSize int64
}

func NewLocalStorage(dir, baseURL string, maxFileSize int64) StorageService {
    return &localStorage{
        dir:         dir,
        baseURL:     baseURL,
        maxFileSize: maxFileSize,
    }
}

func (l *localStorage) UploadChatMedia(ctx context.Context, file io.Reader, filename, contentType string) (string, error) {
    if !isAllowedMediaType(contentType) {
        return "", fmt.Errorf("file type %s not allowed", contentType)
    }

    key := mediaKey(filename)
    path := filepath.Join(l.dir, filepath.FromSlash(key))
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
        return "", fmt.Errorf("failed to create upload dir: %v", err)
    }

    out, err := os.Create(path)
    if err != nil {
        return "", fmt.Errorf("failed to create file: %v", err)
    }
    defer out.Close()

    size, err := io.Copy(out, io.LimitReader(file, l.maxFileSize+1))
    if err != nil {
        return "", fmt.Errorf("failed to write file: %v", err)
    }
    if size > l.maxFileSize {
        os.Remove(path)
        return "", fmt.Errorf("file exceeds maximum allowed size %d", l.maxFileSize)
    }

    return fmt.Sprintf("%s/uploads/%s", l.baseURL, key), nil
}

func (l *localStorage) DeleteChatMedia(ctx context.Context, mediaURL string) error {
    key := strings.TrimPrefix(mediaURL, l.baseURL+"/uploads/")
    return os.Remove(filepath.Join(l.dir, filepath.FromSlash(key)))
}
