package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/xaldigital/insumos-portal/internal/domain"
)

// Mensajes al usuario. Los textos son los que ya conocen los representantes.
const (
	msgRequiredCredentials = "Nombre de usuario y Contraseña obligatorios"
	msgInvalidCredentials  = "Credenciales Inválidas"
	msgResourceNotFound    = "Recurso No Encontrado"
	msgUserNotFound        = "Usuario No Encontrado"
	msgUserNotConfirmed    = "Usuario No Confirmado"
	msgGeneral             = "Error general. Por favor contactar al administrador"
	msgEmailExists         = "Ya existe una cuenta asociada a este correo"
	msgWeakPassword        = "Crea una contraseña de al menos 8 dígitos, más segura, usando al menos una letra mayúscula, un número y un carácter especial"
	msgCodeExpired         = "El código enviado a su correo ha expirado"
	msgCodeMismatch        = "El código no es válido"
	msgTooManyAttempts     = "Máximo de intentos superados para validar la cuenta"
	msgUserGone            = "Usuario No Encontrado o Eliminado."
	msgCodeDelivery        = "Ha ocurrido un problema al enviar el código para asignar una nueva contraseña. Intenta de nuevo."
	msgSessionExpired      = "Sesión Expirada. Ingrese sus datos de nuevo"
	msgVendorNotFound      = "El proveedor no existe"
	msgForbidden           = "Usuario no Autorizado para ejecutar esta acción"
	msgInvalidInput        = "Datos inválidos. Revise el formulario"
	msgDuplicate           = "Ya existe un registro con ese nombre"
	msgVendorInUse         = "El proveedor tiene insumos asignados y no se puede eliminar"
	msgInsufficientStock   = "No hay stock suficiente para uno de los insumos"
	msgInvalidSignature    = "La firma debe ser una imagen PNG o JPEG"
	msgNotFound            = "Registro no encontrado"

	msgInsumoCreated    = "Insumo agregado correctamente!"
	msgInsumoUpdated    = "Insumo actualizado correctamente!"
	msgInsumoDeleted    = "Insumo eliminado"
	msgVendorCreated    = "Proveedor agregado correctamente!"
	msgVendorDeleted    = "Proveedor eliminado"
	msgOrderCreated     = "Pedido creado exitosamente!"
	msgOrderUpdated     = "Pedido actualizado"
	msgOrderCancelled   = "Pedido cancelado"
	msgOrdersCancelled  = "Pedidos cancelados"
	msgSignatureSaved   = "Firma guardada correctamente"
	msgCodeSent         = "Se envió un código de confirmación a su correo"
	msgResetCodeSent    = "Se envió un código a su correo para asignar una nueva contraseña"
	msgAccountConfirmed = "Cuenta confirmada. Ingrese sus datos"
	msgPasswordReset    = "Contraseña actualizada. Ingrese sus datos"
)

// errorMessage traduce un error de dominio a status HTTP y mensaje en español.
func errorMessage(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, domain.ErrIdentityNotFound):
		return fiber.StatusNotFound, msgResourceNotFound
	case errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, msgUserNotFound
	case errors.Is(err, domain.ErrUserNotConfirmed):
		return fiber.StatusForbidden, msgUserNotConfirmed
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, msgEmailExists
	case errors.Is(err, domain.ErrWeakPassword):
		return fiber.StatusBadRequest, msgWeakPassword
	case errors.Is(err, domain.ErrCodeExpired):
		return fiber.StatusBadRequest, msgCodeExpired
	case errors.Is(err, domain.ErrCodeMismatch):
		return fiber.StatusBadRequest, msgCodeMismatch
	case errors.Is(err, domain.ErrTooManyAttempts):
		return fiber.StatusTooManyRequests, msgTooManyAttempts
	case errors.Is(err, domain.ErrCodeDeliveryFailure):
		return fiber.StatusBadGateway, msgCodeDelivery
	case errors.Is(err, domain.ErrSessionExpired):
		return fiber.StatusUnauthorized, msgSessionExpired
	case errors.Is(err, domain.ErrVendorNotFound):
		return fiber.StatusBadRequest, msgVendorNotFound
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, msgForbidden
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, msgSessionExpired
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, msgInvalidInput
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, msgDuplicate
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, msgVendorInUse
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, msgInsufficientStock
	case errors.Is(err, domain.ErrInvalidSignature):
		return fiber.StatusBadRequest, msgInvalidSignature
	case errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusConflict, msgInvalidInput
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, msgNotFound
	}
	return fiber.StatusInternalServerError, msgGeneral
}
