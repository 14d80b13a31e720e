// Package reliability keeps the sqlite databases healthy and backed up.
package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aristath/mars-command/internal/database"
	"github.com/rs/zerolog"
)

const (
	archivePrefix   = "mars-backup-"
	archiveSuffix   = ".tar.gz"
	archiveTimeFmt  = "2006-01-02-150405"
	metadataFile    = "backup-metadata.json"
	defaultKeepLast = 7
)

// Uploader ships a finished archive off the machine
type Uploader interface {
	Upload(ctx context.Context, name string, body io.Reader) (string, error)
}

// BackupMetadata is written into every archive
type BackupMetadata struct {
	Timestamp time.Time          `json:"timestamp"`
	Databases []DatabaseMetadata `json:"databases"`
}

// DatabaseMetadata describes one snapshot inside an archive
type DatabaseMetadata struct {
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// BackupResult reports a finished backup
type BackupResult struct {
	Archive   string         `json:"archive"`
	Path      string         `json:"path"`
	SizeBytes int64          `json:"size_bytes"`
	Remote    string         `json:"remote,omitempty"`
	Metadata  BackupMetadata `json:"metadata"`
}

// BackupInfo describes an archive kept in the local backup directory
type BackupInfo struct {
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
}

// BackupService snapshots every database into a tar.gz archive under
// backupDir and optionally uploads it
type BackupService struct {
	mu sync.Mutex // serializes CreateBackup

	databases map[string]*database.DB
	backupDir string
	uploader  Uploader
	keepLast  int
	now       func() time.Time
	log       zerolog.Logger
}

// NewBackupService creates a backup service. uploader may be nil for local-only backups.
func NewBackupService(databases map[string]*database.DB, backupDir string, uploader Uploader, log zerolog.Logger) *BackupService {
	return &BackupService{
		databases: databases,
		backupDir: backupDir,
		uploader:  uploader,
		keepLast:  defaultKeepLast,
		now:       time.Now,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// DatabaseNames returns the backed-up database names in sorted order
func (s *BackupService) DatabaseNames() []string {
	names := make([]string, 0, len(s.databases))
	for name := range s.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateBackup snapshots all databases, archives them and uploads the archive
// when an uploader is configured. Old local archives beyond keepLast are removed.
// Concurrent calls run one at a time and never reuse an archive name.
func (s *BackupService) CreateBackup(ctx context.Context) (*BackupResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Info().Msg("Starting backup")
	startTime := time.Now()

	if err := os.MkdirAll(s.backupDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	stagingDir, err := os.MkdirTemp(s.backupDir, "staging-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	timestamp := s.freeTimestamp(s.now().UTC())
	metadata := BackupMetadata{Timestamp: timestamp}
	files := make([]string, 0, len(s.databases)+1)

	for _, name := range s.DatabaseNames() {
		filename := name + ".db"
		snapshotPath := filepath.Join(stagingDir, filename)

		if err := s.databases[name].SnapshotTo(ctx, snapshotPath); err != nil {
			return nil, fmt.Errorf("failed to snapshot %s: %w", name, err)
		}

		info, err := os.Stat(snapshotPath)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s snapshot: %w", name, err)
		}

		checksum, err := fileChecksum(snapshotPath)
		if err != nil {
			return nil, fmt.Errorf("failed to checksum %s snapshot: %w", name, err)
		}

		metadata.Databases = append(metadata.Databases, DatabaseMetadata{
			Name:      name,
			Filename:  filename,
			SizeBytes: info.Size(),
			Checksum:  checksum,
		})
		files = append(files, filename)
	}

	if err := writeMetadata(filepath.Join(stagingDir, metadataFile), metadata); err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}
	files = append(files, metadataFile)

	archiveName := archivePrefix + timestamp.Format(archiveTimeFmt) + archiveSuffix
	archivePath := filepath.Join(s.backupDir, archiveName)
	if err := createArchive(archivePath, stagingDir, files); err != nil {
		_ = os.Remove(archivePath)
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	archiveInfo, err := os.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	result := &BackupResult{
		Archive:   archiveName,
		Path:      archivePath,
		SizeBytes: archiveInfo.Size(),
		Metadata:  metadata,
	}

	if s.uploader != nil {
		remote, err := s.upload(ctx, archiveName, archivePath)
		if err != nil {
			return result, err
		}
		result.Remote = remote
	}

	if err := s.rotate(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to rotate local backups")
	}

	s.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Str("archive", archiveName).
		Int64("size_bytes", archiveInfo.Size()).
		Str("remote", result.Remote).
		Msg("Backup completed")

	return result, nil
}

// freeTimestamp moves t forward a second at a time until no archive carries its name
func (s *BackupService) freeTimestamp(t time.Time) time.Time {
	for {
		name := archivePrefix + t.Format(archiveTimeFmt) + archiveSuffix
		if _, err := os.Stat(filepath.Join(s.backupDir, name)); err != nil {
			return t
		}
		t = t.Add(time.Second)
	}
}

// ListBackups returns local archives, newest first
func (s *BackupService) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.backupDir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, archivePrefix) || !strings.HasSuffix(name, archiveSuffix) {
			continue
		}

		stamp := strings.TrimSuffix(strings.TrimPrefix(name, archivePrefix), archiveSuffix)
		timestamp, err := time.Parse(archiveTimeFmt, stamp)
		if err != nil {
			s.log.Warn().Str("filename", name).Msg("Failed to parse timestamp from filename")
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, BackupInfo{
			Filename:  name,
			Timestamp: timestamp,
			SizeBytes: info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

func (s *BackupService) upload(ctx context.Context, name, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	remote, err := s.uploader.Upload(ctx, name, file)
	if err != nil {
		return "", fmt.Errorf("failed to upload backup: %w", err)
	}
	return remote, nil
}

// rotate keeps the newest keepLast local archives
func (s *BackupService) rotate() error {
	backups, err := s.ListBackups()
	if err != nil {
		return err
	}
	if len(backups) <= s.keepLast {
		return nil
	}

	for _, backup := range backups[s.keepLast:] {
		if err := os.Remove(filepath.Join(s.backupDir, backup.Filename)); err != nil {
			return fmt.Errorf("failed to delete %s: %w", backup.Filename, err)
		}
		s.log.Debug().Str("filename", backup.Filename).Msg("Deleted old backup")
	}
	return nil
}

// fileChecksum calculates SHA256 checksum of a file
func fileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}

func writeMetadata(path string, metadata BackupMetadata) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}

// createArchive writes the named files from sourceDir into a tar.gz at archivePath
func createArchive(archivePath, sourceDir string, files []string) (err error) {
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer func() {
		if cerr := archiveFile.Close(); err == nil {
			err = cerr
		}
	}()

	gzipWriter := gzip.NewWriter(archiveFile)
	tarWriter := tar.NewWriter(gzipWriter)

	for _, name := range files {
		if err := addFileToArchive(tarWriter, filepath.Join(sourceDir, name), name); err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return err
	}
	return gzipWriter.Close()
}

func addFileToArchive(tarWriter *tar.Writer, path, nameInArchive string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Name:    nameInArchive,
		Size:    info.Size(),
		Mode:    int64(info.Mode()),
		ModTime: info.ModTime(),
	}
	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	_, err = io.Copy(tarWriter, file)
	return err
}
