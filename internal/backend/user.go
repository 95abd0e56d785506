package backend

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"shopfront/internal/models"
)

func (c *Client) GetProfile(ctx context.Context) (models.User, error) {
	var user models.User
	_, err := c.do(ctx, http.MethodGet, "/me", nil, nil, &user)
	return user, err
}

func (c *Client) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (models.User, error) {
	var user models.User
	_, err := c.do(ctx, http.MethodPut, "/user", nil, req, &user)
	return user, err
}

// UploadAvatar streams an image to the backend and returns the stored
// avatar reference.
func (c *Client) UploadAvatar(ctx context.Context, filename string, file io.Reader) (string, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		part, err := form.CreateFormFile("image", filename)
		if err == nil {
			_, err = io.Copy(part, file)
		}
		if err == nil {
			err = form.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/user/upload-avatar", nil, pr)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var avatar string
	if _, err := c.send(req, &avatar); err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	return avatar, nil
}
