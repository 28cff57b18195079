package prediction

// ItemStatus is the outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Item is the outcome of predicting one design in a batch. Exactly one of
// Result and Err is meaningful, selected by Status.
type Item struct {
	index  int
	status ItemStatus
	result Result
	err    error
}

// NewOK creates a successful batch item.
func NewOK(index int, r Result) Item {
	return Item{index: index, status: StatusOK, result: r}
}

// NewError creates a failed batch item.
func NewError(index int, err error) Item {
	return Item{index: index, status: StatusError, err: err}
}

// Index returns the position of the item in the request.
func (i Item) Index() int { return i.index }

// Status returns the outcome.
func (i Item) Status() ItemStatus { return i.status }

// Result returns the prediction. Zero when Status is StatusError.
func (i Item) Result() Result { return i.result }

// Err returns the failure, if any.
func (i Item) Err() error { return i.err }
