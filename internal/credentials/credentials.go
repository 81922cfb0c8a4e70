// Package credentials generates replacement passwords handed out by admins.
package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// TeacherPasswordLength is the exact length of a teacher password
const TeacherPasswordLength = 6

// Word lists for student passwords that children can read back
var adjectives = []string{
	"happy", "sunny", "brave", "bright", "swift", "clever", "jolly", "mighty",
	"lucky", "magic", "merry", "noble", "quick", "royal", "bold", "cosmic",
}

var nouns = []string{
	"tiger", "eagle", "panda", "lion", "wolf", "bear", "fox", "hawk",
	"rocket", "robot", "comet", "star", "river", "cloud", "tree", "kite",
}

// Ambiguous characters (0/O, 1/l/I) are left out
const teacherAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateStudentPassword returns a password such as "sunnyfox42"
func GenerateStudentPassword() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}
	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}
	n, err := randomInt(90)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s%d", adjective, noun, n+10), nil
}

// GenerateTeacherPassword returns a random password of exactly TeacherPasswordLength characters
func GenerateTeacherPassword() (string, error) {
	password := make([]byte, TeacherPasswordLength)
	for i := range password {
		n, err := randomInt(len(teacherAlphabet))
		if err != nil {
			return "", err
		}
		password[i] = teacherAlphabet[n]
	}
	return string(password), nil
}

func randomInt(max int) (int, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(num.Int64()), nil
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}
	n, err := randomInt(len(slice))
	if err != nil {
		return "", err
	}
	return slice[n], nil
}
