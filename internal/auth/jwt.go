package auth

import (
	"errors"
	"time"

	"mahzen-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Token ömrü: bir sayım vardiyası fazlasıyla içinde kalır
const tokenTTL = 24 * time.Hour

// Claims: Token'da taşınan kimlik ve yetki bağlamı. LocationID sayım
// oturumlarının lokasyon filtresinde kullanılır.
type Claims struct {
	UserID     uint            `json:"user_id"`
	Email      string          `json:"email"`
	Role       models.UserRole `json:"role"`
	LocationID *uint           `json:"location_id"`
	jwt.RegisteredClaims
}

var errBadToken = errors.New("geçersiz veya süresi dolmuş token")

// IssueToken: Girişte HS256 imzalı token üretir
func IssueToken(secret string, user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		LocationID: user.LocationID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})
	return token.SignedString([]byte(secret))
}

// ParseToken: İmzayı doğrulayıp claim'leri döndürür. Sadece HMAC kabul
// edilir; token'ın alg başlığına güvenilmez.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errBadToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errBadToken
	}
	return claims, nil
}
