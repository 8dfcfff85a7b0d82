package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/difylang/dbagent/internal/models"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DataClient talks to the relational-data service that backs the schema
// browser and the table viewer. Read-only surface.
type DataClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewDataClient(baseURL string, timeout time.Duration, logger *zap.Logger) *DataClient {
	return &DataClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// schemaField mirrors the per-column entry of the /get_schema payload.
type schemaField struct {
	Type    string `json:"type"`
	Null    string `json:"null"`
	Key     string `json:"key"`
	Default any    `json:"default"`
}

type schemaTable struct {
	Fields      map[string]schemaField `json:"fields"`
	ForeignKeys map[string]any         `json:"foreign_keys"`
}

// GetSchema fetches and flattens the table schemas. The service wraps the
// schema in a result envelope holding a single JSON-encoded string.
func (c *DataClient) GetSchema(ctx context.Context) ([]models.TableSchema, error) {
	raw, err := c.do(ctx, http.MethodGet, "/get_schema", nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Result []string `json:"result"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &APIError{Kind: FaultUnknown, Err: fmt.Errorf("decoding schema envelope: %w", err)}
	}
	if len(envelope.Result) == 0 {
		return nil, &APIError{Kind: FaultUnknown, Err: fmt.Errorf("empty schema result")}
	}

	var tables map[string]schemaTable
	if err := json.Unmarshal([]byte(envelope.Result[0]), &tables); err != nil {
		return nil, &APIError{Kind: FaultUnknown, Err: fmt.Errorf("decoding schema payload: %w", err)}
	}

	schemas := make([]models.TableSchema, 0, len(tables))
	for name, table := range tables {
		columns := make([]models.ColumnInfo, 0, len(table.Fields))
		for colName, field := range table.Fields {
			columns = append(columns, models.ColumnInfo{
				Name:     colName,
				Type:     field.Type,
				Nullable: strings.EqualFold(field.Null, "YES"),
				Key:      field.Key,
				Default:  field.Default,
			})
		}
		sort.Slice(columns, func(i, j int) bool { return columns[i].Name < columns[j].Name })
		schemas = append(schemas, models.TableSchema{Name: name, Columns: columns})
	}
	sort.Slice(schemas, func(i, j int) bool { return schemas[i].Name < schemas[j].Name })
	return schemas, nil
}

// ExecuteQuery runs a read-only SQL query and returns the result rows.
func (c *DataClient) ExecuteQuery(ctx context.Context, sql string) ([]map[string]any, error) {
	body, err := json.Marshal(map[string]string{"sql_query": sql})
	if err != nil {
		return nil, &APIError{Kind: FaultUnknown, Err: err}
	}

	raw, err := c.do(ctx, http.MethodPost, "/execute_query", body)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, &APIError{Kind: FaultUnknown, Err: fmt.Errorf("decoding query result: %w", err)}
	}
	return rows, nil
}

// GetTableData fetches one page of a table. Pages are zero-based.
func (c *DataClient) GetTableData(ctx context.Context, table string, page, pageSize int) ([]map[string]any, error) {
	if !identifierPattern.MatchString(table) {
		return nil, &APIError{Kind: FaultClient, Message: fmt.Sprintf("invalid table name %q", table)}
	}
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	sql := fmt.Sprintf("SELECT * FROM %s LIMIT %d OFFSET %d", table, pageSize, page*pageSize)
	return c.ExecuteQuery(ctx, sql)
}

// GetTableCount returns the total row count of a table.
func (c *DataClient) GetTableCount(ctx context.Context, table string) (int, error) {
	if !identifierPattern.MatchString(table) {
		return 0, &APIError{Kind: FaultClient, Message: fmt.Sprintf("invalid table name %q", table)}
	}
	rows, err := c.ExecuteQuery(ctx, fmt.Sprintf("SELECT COUNT(*) AS total FROM %s", table))
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	switch v := rows[0]["total"].(type) {
	case float64:
		return int(v), nil
	case json.Number:
		n, _ := v.Int64()
		return int(n), nil
	default:
		return 0, &APIError{Kind: FaultUnknown, Err: fmt.Errorf("unexpected count type %T", v)}
	}
}

func (c *DataClient) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &APIError{Kind: FaultUnknown, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := classifyTransportError(err)
		c.logger.Warn("data service request failed",
			zap.String("path", path),
			zap.String("kind", apiErr.Kind.String()),
			zap.Error(err))
		return nil, apiErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: FaultUnknown, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, serverMessage(raw))
	}
	return raw, nil
}
