package storage

import (
	"context"
	"io"
)

type ArchiveResult struct {
	Key      string
	Location string
	ETag     string
}

// MatchArchive keeps final match documents in object storage so feeds and
// reports can read them without hitting the database.
type MatchArchive interface {
	Put(ctx context.Context, key string, contentType string, body io.Reader) (*ArchiveResult, error)

	GetPublicURL(key string) string
}

// MatchKey is the object key of a completed match document.
func MatchKey(tournamentID, matchID string) string {
	if tournamentID == "" {
		tournamentID = "unassigned"
	}
	return "matches/" + tournamentID + "/" + matchID + ".json"
}

type noopArchive struct{}

// NewNoopArchive returns an archive that accepts and discards everything. It is
// used when object storage is not configured.
func NewNoopArchive() MatchArchive { return noopArchive{} }

func (noopArchive) Put(_ context.Context, key string, _ string, _ io.Reader) (*ArchiveResult, error) {
	return &ArchiveResult{Key: key}, nil
}

func (noopArchive) GetPublicURL(string) string { return "" }
