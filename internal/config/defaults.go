package config

import "github.com/ariel-frischer/easbuild/internal/easjson"

// DefaultCommitMessage is the message used when eas.json is committed for the user.
const DefaultCommitMessage = "Create minimal eas.json"

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"non_interactive": false,
		// default_workflow: written into eas.json when the file does not exist yet.
		"default_workflow":       string(easjson.DefaultWorkflow),
		"commit_message":         DefaultCommitMessage,
		"skip_credentials_check": false,
		"spinner":                true,
		// session_path: empty means <UserConfigDir>/easbuild/session.json
		"session_path": "",
	}
}
