package bizapi

// Envelope is the wrapper every endpoint returns around its payload.
type Envelope[T any] struct {
	Code    int    `json:"code"    yaml:"code"`
	Message string `json:"message" yaml:"message"`
	Result  *T     `json:"result"  yaml:"result"`
	Success bool   `json:"success" yaml:"success"`
}

// PaginationMeta is the pagination block of a paginated payload.
type PaginationMeta struct {
	CurrentPage int `json:"currentPage" yaml:"currentPage"`
	PageSize    int `json:"pageSize"    yaml:"pageSize"`
	TotalItems  int `json:"totalItems"  yaml:"totalItems"`
	TotalPages  int `json:"totalPages"  yaml:"totalPages"`
}

// PaginatedEnvelope is the payload shape of list endpoints. It travels as the
// result of a regular Envelope.
type PaginatedEnvelope[T any] struct {
	Items      []T            `json:"items"      yaml:"items"`
	Pagination PaginationMeta `json:"pagination" yaml:"pagination"`
}

// Void is the value carried by successful operations that return nothing.
type Void struct{}

// NewEnvelope wraps result in a successful envelope.
func NewEnvelope[T any](code int, message string, result T) Envelope[T] {
	return Envelope[T]{
		Code:    code,
		Message: message,
		Result:  &result,
		Success: true,
	}
}

// NewFailureEnvelope builds an envelope reporting a business failure.
func NewFailureEnvelope(code int, message string) Envelope[Void] {
	return Envelope[Void]{
		Code:    code,
		Message: message,
	}
}

// NewPaginatedEnvelope builds the list payload for a page.
func NewPaginatedEnvelope[T any](list PagedList[T]) PaginatedEnvelope[T] {
	items := list.Items
	if items == nil {
		items = []T{}
	}

	return PaginatedEnvelope[T]{
		Items: items,
		Pagination: PaginationMeta{
			CurrentPage: list.PageNumber,
			PageSize:    list.PageSize,
			TotalItems:  list.TotalCount,
			TotalPages:  list.TotalPages(),
		},
	}
}

// wireEnvelope is the decoding view of Envelope. Success is a pointer so a
// body that is valid JSON but not an envelope can be told apart from a
// reported failure.
type wireEnvelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Result  *T     `json:"result"`
	Success *bool  `json:"success"`
}
