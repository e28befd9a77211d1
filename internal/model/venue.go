package model

type SessionType string

const (
	SessionTypeOnline   SessionType = "online"
	SessionTypeInPerson SessionType = "in-person"
	SessionTypeHybrid   SessionType = "hybrid"
)

// Venue is where a session happens, discriminated by Type: online
// sessions carry a meeting link, in-person and hybrid sessions carry a
// location. The constructors are the only way to build a valid value,
// so an online venue with a street address is unrepresentable.
type Venue struct {
	Type        SessionType `json:"type"`
	MeetingLink string      `json:"meeting_link,omitempty"`
	Location    string      `json:"location,omitempty"`
}

// OnlineVenue builds the venue for an online session.
func OnlineVenue(meetingLink string) Venue {
	return Venue{Type: SessionTypeOnline, MeetingLink: meetingLink}
}

// OnSiteVenue builds the venue for an in-person or hybrid session.
func OnSiteVenue(t SessionType, location string) (Venue, error) {
	if t != SessionTypeInPerson && t != SessionTypeHybrid {
		return Venue{}, NewValidationError("location is only allowed for in-person or hybrid sessions")
	}
	return Venue{Type: t, Location: location}, nil
}

// NewVenue builds a venue from loose fields, as they arrive on the
// wire, rejecting any type/field mismatch.
func NewVenue(t SessionType, meetingLink, location string) (Venue, error) {
	switch t {
	case SessionTypeOnline:
		if location != "" {
			return Venue{}, NewValidationError("an online session cannot have a location")
		}
		return OnlineVenue(meetingLink), nil
	case SessionTypeInPerson, SessionTypeHybrid:
		if meetingLink != "" {
			return Venue{}, NewValidationError("an " + string(t) + " session cannot have a meeting link")
		}
		return OnSiteVenue(t, location)
	default:
		return Venue{}, NewValidationError("unknown session type: " + string(t))
	}
}
