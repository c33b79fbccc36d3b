package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
)

var ErrorURLNotFound = errors.New("URL not found")

func getResp(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP Get request: %w", err)
	}

	req.Header.Set("User-Agent", clientAgent)

	return GetHTTPClient().Do(req) //nolint:gosec // URL supplied by the local operator
}

// Download saves the content of url into filepath.
func Download(ctx context.Context, url string, filepath string) (retErr error) {
	resp, err := getResp(ctx, url)
	if err != nil {
		return fmt.Errorf("error downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrorURLNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("error downloading file (status: %d - %s): %s", resp.StatusCode, resp.Status, url)
	}

	out, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("closing file: %w", cerr)
		}
	}()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("error saving downloaded content to file: %w", err)
	}

	slog.Debug("downloaded", "url", url, "path", filepath, "bytes", n)
	return nil
}

// DownloadTemp saves the content of url into a new temporary file and
// returns its path. The caller removes the file.
func DownloadTemp(ctx context.Context, url string) (string, error) {
	tmp, err := os.CreateTemp("", "attrition-*.csv")
	if err != nil {
		return "", fmt.Errorf("error creating temp file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()

	if err := Download(ctx, url, path); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
