package data

import (
	"sync"

	"github.com/difylang/dbagent/internal/models"
)

const defaultPageSize = 10

// Pagination tracks the viewer's position within the selected table.
type Pagination struct {
	PageIndex int
	PageSize  int
	Total     int
}

// Store holds the display-side data state: the dataset extracted from the
// conversation, the backend schemas and the table-viewer pagination. Each
// successful extraction replaces the previous dataset; failed extractions
// never reach the store, so whatever is on display stays untouched.
type Store struct {
	mu            sync.RWMutex
	dataset       *models.TabularDataset
	schema        []models.TableSchema
	selectedTable string
	pagination    Pagination
	note          string
}

func NewStore() *Store {
	return &Store{
		pagination: Pagination{PageSize: defaultPageSize},
	}
}

// PublishDataset replaces the displayed dataset and resets the page position.
func (s *Store) PublishDataset(ds *models.TabularDataset) {
	if ds == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = ds
	s.pagination.PageIndex = 0
	s.pagination.Total = ds.Total
	s.note = ""
}

// Dataset returns the currently displayed dataset, nil when none.
func (s *Store) Dataset() *models.TabularDataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

func (s *Store) SetSchema(schema []models.TableSchema) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schema = schema
}

func (s *Store) Schema() []models.TableSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]models.TableSchema, len(s.schema))
	copy(result, s.schema)
	return result
}

func (s *Store) SelectTable(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name != s.selectedTable {
		s.selectedTable = name
		s.pagination.PageIndex = 0
		s.pagination.Total = 0
	}
}

func (s *Store) SelectedTable() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedTable
}

func (s *Store) SetPage(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 {
		index = 0
	}
	s.pagination.PageIndex = index
}

func (s *Store) SetTotal(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pagination.Total = total
}

func (s *Store) Pagination() Pagination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pagination
}

func (s *Store) SetNote(note string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.note = note
}

func (s *Store) Note() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.note
}

// Reset drops the dataset and pagination but keeps the schemas - the database
// structure does not change because a conversation was cleared.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = nil
	s.selectedTable = ""
	s.pagination = Pagination{PageSize: defaultPageSize}
	s.note = ""
}
