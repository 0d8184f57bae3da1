package htmlresponse

// PluginInfo describes the trial type and its parameter/data schema for
// host introspection and logging.
type PluginInfo struct {
	Name       string      `json:"name"`
	Version    string      `json:"version"`
	Parameters []ParamInfo `json:"parameters"`
	Data       []ParamInfo `json:"data"`
}

type ParamInfo struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default string `json:"default,omitempty"`
}

func Info() PluginInfo {
	return PluginInfo{
		Name:    "html-response",
		Version: "1.2.0",
		Parameters: []ParamInfo{
			{Name: "stimulus", Type: "html"},
			{Name: "choices", Type: "keys", Default: "ALL_KEYS"},
			{Name: "show_buttons", Type: "bool", Default: "false"},
			{Name: "button_html", Type: "function"},
			{Name: "button_layout", Type: "string", Default: "grid"},
			{Name: "grid_rows", Type: "int", Default: "1"},
			{Name: "grid_columns", Type: "int"},
			{Name: "enable_button_after", Type: "int", Default: "0"},
			{Name: "prompt", Type: "html"},
			{Name: "stimulus_duration", Type: "int"},
			{Name: "trial_duration", Type: "int"},
			{Name: "response_ends_trial", Type: "bool", Default: "true"},
		},
		Data: []ParamInfo{
			{Name: "stimulus", Type: "html"},
			{Name: "response", Type: "string"},
			{Name: "rt", Type: "int"},
		},
	}
}
