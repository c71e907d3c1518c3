package server

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"golang.org/x/crypto/bcrypt"
)

// createAuthMiddleware creates basic auth middleware based on configuration
// Returns nil if no authentication is configured
func (s *Server) createAuthMiddleware() fiber.Handler {
	// Priority 1: htpasswd file
	if s.config.HtpasswdFile != "" {
		users, err := parseHtpasswd(s.config.HtpasswdFile)
		if err != nil {
			s.logger.Warn("failed to parse htpasswd file, authentication disabled", "error", err)
			return nil
		}

		return basicauth.New(basicauth.Config{
			Authorizer: func(user, pass string) bool {
				hashedPass, exists := users[user]
				if !exists {
					return false
				}
				return verifyPassword(pass, hashedPass)
			},
		})
	}

	// Priority 2: configured credentials
	if s.config.AuthUser != "" && s.config.AuthPass != "" {
		return basicauth.New(basicauth.Config{
			Users: map[string]string{
				s.config.AuthUser: s.config.AuthPass,
			},
		})
	}

	return nil
}

// parseHtpasswd reads an htpasswd file into a map of username to bcrypt hash.
// Entries with other hash formats are skipped.
func parseHtpasswd(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open htpasswd file: %w", err)
	}
	defer file.Close()

	users := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		username, hash, ok := strings.Cut(line, ":")
		if !ok {
			slog.Warn("invalid htpasswd entry: missing colon", "line", lineNum)
			continue
		}

		// Only bcrypt is supported
		if !strings.HasPrefix(hash, "$2") {
			slog.Warn("unsupported htpasswd hash, use bcrypt", "user", username, "line", lineNum)
			continue
		}

		users[username] = hash
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading htpasswd file: %w", err)
	}

	if len(users) == 0 {
		return nil, fmt.Errorf("no valid users found in htpasswd file")
	}

	return users, nil
}

// verifyPassword checks a plaintext password against a bcrypt hash.
func verifyPassword(plaintext, hashed string) bool {
	if !strings.HasPrefix(hashed, "$2") {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
