package events

const (
	StreamName   = "CURVEFIT_EVENTS"
	StreamMaxAge = "168h" // 7 days
)

func SubjectSessionCreated(sessionID string) string { return "curvefit.session." + sessionID + ".created" }
func SubjectSessionChanged(sessionID string) string { return "curvefit.session." + sessionID + ".changed" }
func SubjectSessionDeleted(sessionID string) string { return "curvefit.session." + sessionID + ".deleted" }
