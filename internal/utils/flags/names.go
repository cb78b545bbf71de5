package flags

// Flag names shared by several git-id subcommands.
const (
	// GlobalFlagName selects global instead of repository-local git configuration.
	GlobalFlagName = "global"
	// GlobalFlagShorthand is the shorthand for GlobalFlagName.
	GlobalFlagShorthand = "g"
	// AssumeYesFlagName skips confirmation prompts.
	AssumeYesFlagName = "yes"
	// AssumeYesFlagShorthand is the shorthand for AssumeYesFlagName.
	AssumeYesFlagShorthand = "y"
	// ProfileFlagName names the profile a command runs under.
	ProfileFlagName = "profile"
	// ProfileFlagShorthand is the shorthand for ProfileFlagName.
	ProfileFlagShorthand = "p"
	// DryRunFlagName reports planned changes without applying them.
	DryRunFlagName = "dry-run"
)
