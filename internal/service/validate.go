package service

import "strings"

const (
	phonePrefix = "+380"
	phoneLen    = 13
)

// ValidPhone: ровно 13 символов, префикс +380, остальные 9 цифры.
func ValidPhone(phone string) bool {
	if len(phone) != phoneLen || !strings.HasPrefix(phone, phonePrefix) {
		return false
	}
	for i := len(phonePrefix); i < len(phone); i++ {
		if phone[i] < '0' || phone[i] > '9' {
			return false
		}
	}
	return true
}
