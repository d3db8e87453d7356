package domain

// BloodGroups lists the eight valid blood group values.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// ValidBloodGroup reports whether the value belongs to the valid set.
func ValidBloodGroup(group string) bool {
	for _, candidate := range BloodGroups {
		if candidate == group {
			return true
		}
	}
	return false
}
