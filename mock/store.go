package mock

import "github.com/fwojciec/gtcheck"

// Compile-time interface verification.
var _ gtcheck.RecordStore = (*RecordStore)(nil)

// RecordStore is a mock implementation of gtcheck.RecordStore.
type RecordStore struct {
	LoadFn   func(key gtcheck.RecordKey) (*gtcheck.Record, error)
	CreateFn func(key gtcheck.RecordKey, rec *gtcheck.Record) error
	SaveFn   func(key gtcheck.RecordKey, rec *gtcheck.Record) error
	DeleteFn func(key gtcheck.RecordKey) error
	ListFn   func() ([]gtcheck.RecordKey, error)
}

func (s *RecordStore) Load(key gtcheck.RecordKey) (*gtcheck.Record, error) {
	return s.LoadFn(key)
}

func (s *RecordStore) Create(key gtcheck.RecordKey, rec *gtcheck.Record) error {
	return s.CreateFn(key, rec)
}

func (s *RecordStore) Save(key gtcheck.RecordKey, rec *gtcheck.Record) error {
	return s.SaveFn(key, rec)
}

func (s *RecordStore) Delete(key gtcheck.RecordKey) error {
	return s.DeleteFn(key)
}

func (s *RecordStore) List() ([]gtcheck.RecordKey, error) {
	return s.ListFn()
}

// Compile-time interface verification.
var _ gtcheck.Journal = (*Journal)(nil)

// Journal is a mock implementation of gtcheck.Journal.
type Journal struct {
	AppendFn func(key gtcheck.RecordKey, entry gtcheck.JournalEntry) error
	LoadFn   func(key gtcheck.RecordKey) ([]gtcheck.JournalEntry, error)
}

func (j *Journal) Append(key gtcheck.RecordKey, entry gtcheck.JournalEntry) error {
	return j.AppendFn(key, entry)
}

func (j *Journal) Load(key gtcheck.RecordKey) ([]gtcheck.JournalEntry, error) {
	return j.LoadFn(key)
}
