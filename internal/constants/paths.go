// Package constants contains names for files and directories used by cm.
package constants

const (
	// AppName is the application name used for XDG directory paths.
	AppName = "cm"

	// LogFilename is the default log file name for cm.
	LogFilename = "cm.log"

	// DatabaseFilename is the commit history database file name.
	DatabaseFilename = "history.db"

	// ConfigFilename is the optional configuration file inside the XDG config directory.
	ConfigFilename = "config.yml"

	// EditFilename is the temporary file handed to the operator's editor.
	EditFilename = ".cm_commit_msg_edit"
)
