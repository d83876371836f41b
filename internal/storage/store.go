package storage

import (
	"context"

	"pwviz/internal/model"
)

// Store persists analysis results between invocations.
type Store interface {
	Init(ctx context.Context) error
	SaveDeathIndex(ctx context.Context, record model.DeathIndexRecord) error
	GetDeathIndex(ctx context.Context, runDir string) (model.DeathIndexRecord, bool, error)
	SaveGroupStats(ctx context.Context, record model.GroupStatsRecord) error
	GetGroupStats(ctx context.Context, key string) (model.GroupStatsRecord, bool, error)
	ListGroupStats(ctx context.Context) ([]string, error)
}

func Versioned() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}
