package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveStore uploads into a Google Drive folder on behalf of the signed-in
// teacher, using the access token carried in the context.
type DriveStore struct {
	FolderID string
	opts     []option.ClientOption
}

func NewDriveStore(folderID string, opts ...option.ClientOption) *DriveStore {
	return &DriveStore{FolderID: folderID, opts: opts}
}

func (d *DriveStore) Put(ctx context.Context, name string, r io.Reader) (string, error) {
	tok := AccessTokenFromContext(ctx)
	if tok == "" {
		return "", ErrNoCredentials
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"})
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, d.opts...)
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("drive: new service: %w", err)
	}

	meta := &drive.File{Name: cleanName(name)}
	if d.FolderID != "" {
		meta.Parents = []string{d.FolderID}
	}
	f, err := svc.Files.Create(meta).Media(r).Fields("id", "name").Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 401 {
			return "", fmt.Errorf("drive upload: %w", ErrNoCredentials)
		}
		return "", fmt.Errorf("drive upload: %w", err)
	}
	return f.Id, nil
}
