package database

type SummaryRepository interface {
	Insert(url string) (int64, error)
	GetByID(id int64) (*Summary, error)
	GetAll() ([]Summary, error)
	Update(id int64, url string, summary *string) (*Summary, error)
	Delete(id int64) (bool, error)

	SetSummary(id int64, text string) error
	GetPending(limit int) ([]Summary, error)
	GetCount() (int, error)
}
