package counting

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Servis katmanı sentinel hatalarla konuşur, handler'lar HTTP koduna çevirir.
var (
	// ErrForbidden: Yetki matrisi işleme izin vermiyor
	ErrForbidden = errors.New("bu işlem için yetkiniz yok")

	// ErrSessionExists: Sistem genelinde zaten açık bir oturum var
	ErrSessionExists = errors.New("zaten açık bir sayım oturumu var")

	// ErrInvalidState: Oturumun mevcut durumu bu işleme uygun değil
	ErrInvalidState = errors.New("oturum durumu bu işleme uygun değil")

	// ErrNotFound: Oturum veya ürün bulunamadı
	ErrNotFound = errors.New("kayıt bulunamadı")

	// ErrUpstream: Harici stok sistemi çağrısı başarısız
	ErrUpstream = errors.New("harici stok sistemine ulaşılamadı")

	// ErrValidation: Geçersiz miktar/değer (örn. negatif sayım)
	ErrValidation = errors.New("geçersiz değer")

	// ErrRecountConflict: same_operator politikasında başka operatörün
	// sayımının üzerine yazma girişimi
	ErrRecountConflict = errors.New("bu ürünü başka bir operatör saymış")
)

// httpError: Servis hatasını fiber hatasına çevirir. Forbidden/Conflict/
// InvalidState/Validation çağıran için terminaldir, tekrar denenmez.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrSessionExists), errors.Is(err, ErrInvalidState), errors.Is(err, ErrRecountConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrUpstream):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	case errors.Is(err, ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}
