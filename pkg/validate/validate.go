// Package validate holds the delivery-form validation rules: customer name,
// russian phone number and delivery address. Messages are returned in the
// display language, the HTTP layer passes them through as-is.
package validate

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	ErrNameRequired    = errors.New("имя обязательно для заполнения")
	ErrNameTooShort    = errors.New("имя должно содержать минимум 2 символа")
	ErrNameTooLong     = errors.New("имя не должно превышать 50 символов")
	ErrNameBadChars    = errors.New("имя должно содержать только буквы, пробелы, дефисы и апострофы")
	ErrPhoneRequired   = errors.New("номер телефона обязателен для заполнения")
	ErrPhoneLength     = errors.New("номер телефона должен содержать 11 цифр")
	ErrPhonePrefix     = errors.New("номер телефона должен начинаться с 7 или 8")
	ErrAddressRequired = errors.New("адрес обязателен для заполнения")
	ErrAddressTooShort = errors.New("адрес должен содержать минимум 10 символов")
	ErrAddressTooLong  = errors.New("адрес не должен превышать 200 символов")
	ErrAddressNoLetter = errors.New("адрес должен содержать буквы")
	ErrAddressNoDigit  = errors.New("адрес должен содержать цифры (номер дома, квартиры и т.д.)")
	ErrAddressBadChars = errors.New("адрес содержит недопустимые символы")

	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooWeak  = errors.New("password must contain at least one digit and one letter")
)

var (
	nameRe       = regexp.MustCompile(`^[а-яёa-z\s\-']+$`)
	nonDigitRe   = regexp.MustCompile(`\D`)
	addressBadRe = regexp.MustCompile("[<>{}\\[\\]\\\\|`~!@#$%^&*+=]")
	hasDigitRe   = regexp.MustCompile(`\d`)
	hasLetterRe  = regexp.MustCompile(`[а-яёa-z]`)
)

// Name accepts 2-50 characters of cyrillic or latin letters, spaces,
// hyphens and apostrophes.
func Name(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}

	runes := []rune(name)
	if len(runes) < 2 {
		return ErrNameTooShort
	}
	if len(runes) > 50 {
		return ErrNameTooLong
	}

	if !nameRe.MatchString(strings.ToLower(name)) {
		return ErrNameBadChars
	}

	return nil
}

// Phone accepts a russian number: 11 digits starting with 7 or 8,
// formatting characters are ignored.
func Phone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return ErrPhoneRequired
	}

	clean := nonDigitRe.ReplaceAllString(phone, "")
	if len(clean) != 11 {
		return ErrPhoneLength
	}

	if clean[0] != '7' && clean[0] != '8' {
		return ErrPhonePrefix
	}

	return nil
}

// Address must contain both letters and digits so couriers get a house
// number, and stays within 10-200 characters.
func Address(address string) error {
	if strings.TrimSpace(address) == "" {
		return ErrAddressRequired
	}

	runes := []rune(address)
	if len(runes) < 10 {
		return ErrAddressTooShort
	}
	if len(runes) > 200 {
		return ErrAddressTooLong
	}

	if !hasLetterRe.MatchString(strings.ToLower(address)) {
		return ErrAddressNoLetter
	}
	if !hasDigitRe.MatchString(address) {
		return ErrAddressNoDigit
	}
	if addressBadRe.MatchString(address) {
		return ErrAddressBadChars
	}

	return nil
}

// OrderForm validates delivery fields in display order, reporting the
// first failure.
func OrderForm(name, phone, address string) error {
	if err := Name(name); err != nil {
		return err
	}
	if err := Phone(phone); err != nil {
		return err
	}
	return Address(address)
}

// Password requires at least 8 characters with one letter and one digit.
func Password(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
	}

	if !hasLetter || !hasDigit {
		return ErrPasswordTooWeak
	}

	return nil
}

// IsValidationError reports whether err is one of the form validation
// sentinels, letting the HTTP layer answer 400 instead of 500.
func IsValidationError(err error) bool {
	for _, sentinel := range []error{
		ErrNameRequired, ErrNameTooShort, ErrNameTooLong, ErrNameBadChars,
		ErrPhoneRequired, ErrPhoneLength, ErrPhonePrefix,
		ErrAddressRequired, ErrAddressTooShort, ErrAddressTooLong,
		ErrAddressNoLetter, ErrAddressNoDigit, ErrAddressBadChars,
		ErrPasswordTooShort, ErrPasswordTooWeak,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// FormatPhone renders an 11-digit number as +7 (XXX) XXX-XX-XX,
// anything else is returned untouched.
func FormatPhone(phone string) string {
	clean := nonDigitRe.ReplaceAllString(phone, "")
	if len(clean) != 11 {
		return phone
	}

	var b strings.Builder
	b.WriteString("+7 (")
	b.WriteString(clean[1:4])
	b.WriteString(") ")
	b.WriteString(clean[4:7])
	b.WriteString("-")
	b.WriteString(clean[7:9])
	b.WriteString("-")
	b.WriteString(clean[9:])
	return b.String()
}
