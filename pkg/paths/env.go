package paths

// Environment variables that override the configuration.
const (
	ELABENV_CONFIG = "ELABENV_CONFIG"
	ELABENV_PATH   = "ELABENV_PATH"
	ELABENV_STORE  = "ELABENV_STORE"
	ELABENV_TRUST  = "ELABENV_TRUST"
	XDG_STATE_HOME = "XDG_STATE_HOME"
)
