package analyze

// ResponderStyle labels a contact by average reply time.
func (c ContactRow) ResponderStyle() string {
	switch {
	case c.AvgReply < 300:
		return "Quick Responder"
	case c.AvgReply < 3600:
		return "Regular Responder"
	default:
		return "Thoughtful Responder"
	}
}

// ActivityLevel labels a contact by message volume.
func (c ContactRow) ActivityLevel() string {
	switch {
	case c.MessageCount > 1000:
		return "Very Active"
	case c.MessageCount > 500:
		return "Good Chat"
	default:
		return "Casual Contact"
	}
}

// SpeedCategory labels a reply-speed percentile, where 100 is the fastest.
func SpeedCategory(percentile float64) string {
	switch {
	case percentile >= 80:
		return "Super Fast Friend"
	case percentile >= 60:
		return "Quick Friend"
	case percentile >= 40:
		return "Average Friend"
	default:
		return "Slow & Steady Friend"
	}
}
