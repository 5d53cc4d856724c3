package model

import "time"

const SettingsKey = "main_config"

// SystemSettings is the singleton admin-editable configuration document.
type SystemSettings struct {
	FreeUserMaxFileSize      int    `json:"freeUserMaxFileSize"`
	ProUserMaxFileSize       int    `json:"proUserMaxFileSize"`
	MaxJobsPerHour           int    `json:"maxJobsPerHour"`
	MaxProcessingTime        int    `json:"maxProcessingTime"`
	MaxConcurrentJobs        int    `json:"maxConcurrentJobs"`
	CleanupInterval          int    `json:"cleanupInterval"`
	LogRetentionDays         int    `json:"logRetentionDays"`
	EnableRateLimit          bool   `json:"enableRateLimit"`
	MaxRequestsPerMinute     int    `json:"maxRequestsPerMinute"`
	EnableFileTypeValidation bool   `json:"enableFileTypeValidation"`
	AllowedFileTypes         string `json:"allowedFileTypes"`
	EnableEmailNotifications bool   `json:"enableEmailNotifications"`
	EnableSlackAlerts        bool   `json:"enableSlackAlerts"`
	AlertThreshold           int    `json:"alertThreshold"`
	TempFileRetention        int    `json:"tempFileRetention"`
	MaxStorageGB             int    `json:"maxStorageGB"`
	EnableAutoBackup         bool   `json:"enableAutoBackup"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func DefaultSettings() *SystemSettings {
	now := time.Now().UTC()
	return &SystemSettings{
		FreeUserMaxFileSize:      50,
		ProUserMaxFileSize:       500,
		MaxJobsPerHour:           20,
		MaxProcessingTime:        300,
		MaxConcurrentJobs:        10,
		CleanupInterval:          24,
		LogRetentionDays:         30,
		EnableRateLimit:          true,
		MaxRequestsPerMinute:     60,
		EnableFileTypeValidation: true,
		AllowedFileTypes:         "pdf,doc,docx,jpg,jpeg,png,mp4,avi,zip",
		EnableEmailNotifications: true,
		EnableSlackAlerts:        false,
		AlertThreshold:           80,
		TempFileRetention:        1,
		MaxStorageGB:             100,
		EnableAutoBackup:         true,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
}
