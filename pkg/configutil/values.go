package configutil

// Optional settings decode into pointer fields so absent and zero-valued
// inputs stay distinguishable. These helpers resolve the fallback.

func BoolValue(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func IntValue(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func StringValue(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
