package storage

import (
	"encoding/json"
	"errors"

	"pwviz/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeDeathIndex(r model.DeathIndexRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeDeathIndex(data []byte) (model.DeathIndexRecord, error) {
	var record model.DeathIndexRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.DeathIndexRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.DeathIndexRecord{}, err
	}
	return record, nil
}

func EncodeGroupStats(r model.GroupStatsRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeGroupStats(data []byte) (model.GroupStatsRecord, error) {
	var record model.GroupStatsRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.GroupStatsRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.GroupStatsRecord{}, err
	}
	return record, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
