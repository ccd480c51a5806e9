package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// SetConfigValue upserts one row of the configs table.
func (f *Facade) SetConfigValue(ctx context.Context, key, value, description string) error {
	if key == "" {
		return fmt.Errorf("%w: empty config key", types.ErrInvalidID)
	}
	db, err := f.master()
	if err != nil {
		f.setErr(err)
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = db.Insert(ctx, types.TableConfigs, map[string]types.Value{
		"key":          types.Text(key),
		"value":        types.Text(value),
		"description":  types.Text(description),
		"created_time": types.Text(now),
		"updated_time": types.Text(now),
	})
	if err != nil {
		f.setErr(err)
	}
	return err
}

// GetConfigValue reads one row of the configs table.
func (f *Facade) GetConfigValue(ctx context.Context, key string) (string, error) {
	return f.kvGet(ctx, types.TableConfigs, key)
}

// SetStatistic upserts one row of the statistics table.
func (f *Facade) SetStatistic(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: empty statistic key", types.ErrInvalidID)
	}
	db, err := f.master()
	if err != nil {
		f.setErr(err)
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = db.Insert(ctx, types.TableStatistics, map[string]types.Value{
		"key":          types.Text(key),
		"value":        types.Text(value),
		"created_time": types.Text(now),
		"updated_time": types.Text(now),
	})
	if err != nil {
		f.setErr(err)
	}
	return err
}

// GetStatistic reads one row of the statistics table.
func (f *Facade) GetStatistic(ctx context.Context, key string) (string, error) {
	return f.kvGet(ctx, types.TableStatistics, key)
}

func (f *Facade) kvGet(ctx context.Context, table, key string) (string, error) {
	db, err := f.master()
	if err != nil {
		f.setErr(err)
		return "", err
	}
	result := db.Select(ctx, table, []string{"value"}, "key = ?", types.Text(key))
	if !result.Success {
		err := errors.New(result.ErrorMessage)
		f.setErr(err)
		return "", err
	}
	if result.Empty() {
		return "", fmt.Errorf("%w: %s key %q", types.ErrNotFound, table, key)
	}
	return result.Value(0, "value").AsText(""), nil
}

// LogEntry is one row of the logs table.
type LogEntry struct {
	ID        int64
	EventType string
	Message   string
	Data      string
	Timestamp time.Time
}

// LogEvent appends an event row to the logs table. Data is an opaque JSON
// payload; pass "{}" when there is none.
func (f *Facade) LogEvent(ctx context.Context, eventType, message, data string) error {
	if eventType == "" {
		return fmt.Errorf("%w: empty event type", types.ErrInvalidData)
	}
	if data == "" {
		data = "{}"
	}
	db, err := f.master()
	if err != nil {
		f.setErr(err)
		return err
	}
	_, err = db.Insert(ctx, types.TableLogs, map[string]types.Value{
		"event_type": types.Text(eventType),
		"message":    types.Text(message),
		"data":       types.Text(data),
		"timestamp":  types.Text(time.Now().UTC().Format(time.RFC3339Nano)),
	})
	if err != nil {
		f.setErr(err)
	}
	return err
}

// Logs returns the newest limit event rows, most recent first. A limit of
// zero or below returns everything.
func (f *Facade) Logs(ctx context.Context, limit int) ([]LogEntry, error) {
	db, err := f.master()
	if err != nil {
		f.setErr(err)
		return nil, err
	}
	sqlText := "SELECT id, event_type, message, data, timestamp FROM logs ORDER BY id DESC"
	var params []types.Value
	if limit > 0 {
		sqlText += " LIMIT ?"
		params = append(params, types.Int(int64(limit)))
	}
	result := db.Query(ctx, sqlText, params...)
	if !result.Success {
		err := errors.New(result.ErrorMessage)
		f.setErr(err)
		return nil, err
	}
	out := make([]LogEntry, 0, len(result.Rows))
	for i := range result.Rows {
		e := LogEntry{
			ID:        result.Value(i, "id").AsInt(0),
			EventType: result.Value(i, "event_type").AsText(""),
			Message:   result.Value(i, "message").AsText(""),
			Data:      result.Value(i, "data").AsText(""),
		}
		if ts, err := time.Parse(time.RFC3339Nano, result.Value(i, "timestamp").AsText("")); err == nil {
			e.Timestamp = ts
		}
		out = append(out, e)
	}
	return out, nil
}
