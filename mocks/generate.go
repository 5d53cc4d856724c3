package mocks

//go:generate mockgen -destination=repository.go -package=mocks github.com/saurab2057/Filetool/internal/repository AccountRepository,JobRepository,SettingsRepository,MetadataRepository
//go:generate mockgen -destination=service.go -package=mocks github.com/saurab2057/Filetool/internal/service Converter,EmailSender,FederatedVerifier
//go:generate mockgen -destination=storage.go -package=mocks github.com/saurab2057/Filetool/internal/storage Storage
