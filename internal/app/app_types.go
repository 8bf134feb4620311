package app

// BreakpointView is the frontend view of a device preview width.
type BreakpointView struct {
	Device string `json:"device"`
	Width  int    `json:"width"`
	Icon   string `json:"icon"`
}
