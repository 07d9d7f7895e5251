package fetcher

// Fetcher retrieves the dictionary's result pages within one session
type Fetcher interface {
	// FetchInitial requests the first page and returns its body
	FetchInitial() ([]byte, error)
	// FetchNext posts the paging token and returns the body of the following page.
	// The server tracks the position through the session, so calls must share one.
	FetchNext(token string) ([]byte, error)
}
