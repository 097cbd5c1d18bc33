package sqlite

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/depthcluster/internal/lidar"
)

//go:embed schema.sql
var schemaSQL string

// Open opens (or creates) a segmentation database at path and applies
// the schema. The schema is idempotent, so reopening an existing
// database is safe.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open segmentation db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply segmentation schema: %w", err)
	}
	return db, nil
}

// SegmentationRun is one recorded invocation of the segmentation
// pipeline over a single depth image.
type SegmentationRun struct {
	RunID          string          `json:"run_id"`
	SensorID       string          `json:"sensor_id"`
	CreatedAtNs    int64           `json:"created_at_ns"`
	ImageRows      int             `json:"image_rows"`
	ImageCols      int             `json:"image_cols"`
	ParamsJSON     json.RawMessage `json:"params_json,omitempty"`
	ClusterCount   int             `json:"cluster_count"`
	GroundFraction float64         `json:"ground_fraction"`
}

// RunStore provides persistence for segmentation runs and their
// per-cluster summaries.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a RunStore over an opened database.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// InsertRun creates a new run record. If run.RunID is empty a new UUID
// is generated; if CreatedAtNs is zero the current time is recorded.
func (s *RunStore) InsertRun(run *SegmentationRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAtNs == 0 {
		run.CreatedAtNs = time.Now().UnixNano()
	}

	query := `
		INSERT INTO segmentation_runs (
			run_id, sensor_id, created_at_ns, image_rows, image_cols,
			params_json, cluster_count, ground_fraction
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		run.RunID,
		run.SensorID,
		run.CreatedAtNs,
		run.ImageRows,
		run.ImageCols,
		nullString(string(run.ParamsJSON)),
		run.ClusterCount,
		run.GroundFraction,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// InsertClusters records the cluster summaries belonging to a run.
func (s *RunStore) InsertClusters(runID string, clusters []lidar.ClusterFeatures) error {
	query := `
		INSERT INTO segmentation_clusters (
			run_id, label, point_count,
			centroid_x, centroid_y, centroid_z,
			extent_x, extent_y, extent_z,
			range_mean, range_p50, range_p85, range_p95
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, c := range clusters {
		_, err := s.db.Exec(query,
			runID,
			int(c.Label),
			c.PointCount,
			c.CentroidX, c.CentroidY, c.CentroidZ,
			c.ExtentX, c.ExtentY, c.ExtentZ,
			c.RangeMean, c.RangeP50, c.RangeP85, c.RangeP95,
		)
		if err != nil {
			return fmt.Errorf("insert cluster %d for run %s: %w", c.Label, runID, err)
		}
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *RunStore) GetRun(runID string) (*SegmentationRun, error) {
	query := `
		SELECT run_id, sensor_id, created_at_ns, image_rows, image_cols,
		       params_json, cluster_count, ground_fraction
		FROM segmentation_runs
		WHERE run_id = ?
	`

	var run SegmentationRun
	var paramsJSON sql.NullString
	err := s.db.QueryRow(query, runID).Scan(
		&run.RunID,
		&run.SensorID,
		&run.CreatedAtNs,
		&run.ImageRows,
		&run.ImageCols,
		&paramsJSON,
		&run.ClusterCount,
		&run.GroundFraction,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if paramsJSON.Valid {
		run.ParamsJSON = json.RawMessage(paramsJSON.String)
	}
	return &run, nil
}

// ListRuns returns the most recent runs for a sensor, newest first.
func (s *RunStore) ListRuns(sensorID string, limit int) ([]*SegmentationRun, error) {
	query := `
		SELECT run_id, sensor_id, created_at_ns, image_rows, image_cols,
		       params_json, cluster_count, ground_fraction
		FROM segmentation_runs
		WHERE sensor_id = ?
		ORDER BY created_at_ns DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, sensorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*SegmentationRun
	for rows.Next() {
		var run SegmentationRun
		var paramsJSON sql.NullString
		if err := rows.Scan(
			&run.RunID,
			&run.SensorID,
			&run.CreatedAtNs,
			&run.ImageRows,
			&run.ImageCols,
			&paramsJSON,
			&run.ClusterCount,
			&run.GroundFraction,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if paramsJSON.Valid {
			run.ParamsJSON = json.RawMessage(paramsJSON.String)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// GetClusters returns the cluster summaries of a run, ordered by label.
func (s *RunStore) GetClusters(runID string) ([]lidar.ClusterFeatures, error) {
	query := `
		SELECT label, point_count,
		       centroid_x, centroid_y, centroid_z,
		       extent_x, extent_y, extent_z,
		       range_mean, range_p50, range_p85, range_p95
		FROM segmentation_clusters
		WHERE run_id = ?
		ORDER BY label
	`

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("get clusters: %w", err)
	}
	defer rows.Close()

	var clusters []lidar.ClusterFeatures
	for rows.Next() {
		var c lidar.ClusterFeatures
		var label int
		if err := rows.Scan(
			&label, &c.PointCount,
			&c.CentroidX, &c.CentroidY, &c.CentroidZ,
			&c.ExtentX, &c.ExtentY, &c.ExtentZ,
			&c.RangeMean, &c.RangeP50, &c.RangeP85, &c.RangeP95,
		); err != nil {
			return nil, fmt.Errorf("scan cluster: %w", err)
		}
		c.Label = uint16(label)
		clusters = append(clusters, c)
	}
	return clusters, rows.Err()
}

// nullString converts an empty string to a SQL NULL.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
