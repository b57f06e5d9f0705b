package models

type StatusResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RouteInfo describes one entry of the route catalog.
type RouteInfo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

type RoutesResponse struct {
	Message string      `json:"message"`
	Routes  []RouteInfo `json:"routes"`
	BaseURL string      `json:"baseUrl"`
}

type SaveResponse struct {
	Message   string `json:"message"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
}

type ListResponse struct {
	Message string    `json:"message"`
	Data    []Reading `json:"data"`
	Count   int       `json:"count"`
}

// ReadingResponse carries a single reading; Data is null when there is none.
type ReadingResponse struct {
	Message string   `json:"message"`
	Data    *Reading `json:"data"`
}

type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type RangeResponse struct {
	Message string    `json:"message"`
	Data    []Reading `json:"data"`
	Count   int       `json:"count"`
	Range   DateRange `json:"range"`
}

type DeleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}
