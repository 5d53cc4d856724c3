package service

import (
	"context"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/saurab2057/Filetool/internal/model"
	"github.com/saurab2057/Filetool/internal/repository"
)

// ClientInfo is the request context recorded on login.
type ClientInfo struct {
	IP        string
	UserAgent string
}

type MetadataService struct {
	repo repository.MetadataRepository
}

func NewMetadataService(repo repository.MetadataRepository) *MetadataService {
	return &MetadataService{repo: repo}
}

// Record upserts the latest login metadata of an account. Loopback clients are
// skipped and failures are only logged.
func (s *MetadataService) Record(ctx context.Context, userID string, client ClientInfo) {
	if s == nil {
		return
	}

	ip := net.ParseIP(client.IP)
	if ip == nil || ip.IsLoopback() {
		slog.Debug("skipping login metadata", "user_id", userID, "ip", client.IP)
		return
	}

	metadata := &model.LoginMetadata{
		UserID:    userID,
		IP:        client.IP,
		UserAgent: client.UserAgent,
		Device:    ParseUserAgent(client.UserAgent),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Upsert(ctx, metadata); err != nil {
		slog.Error("failed to save login metadata", "error", err, "user_id", userID)
	}
}

// ParseUserAgent derives a coarse device description from a User-Agent header.
func ParseUserAgent(ua string) model.Device {
	l := strings.ToLower(ua)

	device := model.Device{Type: "desktop"}
	switch {
	case strings.Contains(l, "ipad") || strings.Contains(l, "tablet"):
		device.Type = "tablet"
	case strings.Contains(l, "mobi") || strings.Contains(l, "iphone") || strings.Contains(l, "android"):
		device.Type = "mobile"
	}

	// Order matters: Edge and Opera also announce Chrome, Chrome also announces Safari.
	switch {
	case strings.Contains(l, "edg/"):
		device.Browser = "Edge"
	case strings.Contains(l, "opr/") || strings.Contains(l, "opera"):
		device.Browser = "Opera"
	case strings.Contains(l, "firefox/"):
		device.Browser = "Firefox"
	case strings.Contains(l, "chrome/") || strings.Contains(l, "crios/"):
		device.Browser = "Chrome"
	case strings.Contains(l, "safari/"):
		device.Browser = "Safari"
	}

	switch {
	case strings.Contains(l, "windows"):
		device.OS = "Windows"
	case strings.Contains(l, "iphone") || strings.Contains(l, "ipad"):
		device.OS = "iOS"
	case strings.Contains(l, "mac os"):
		device.OS = "Mac OS"
	case strings.Contains(l, "android"):
		device.OS = "Android"
	case strings.Contains(l, "linux"):
		device.OS = "Linux"
	}

	return device
}
