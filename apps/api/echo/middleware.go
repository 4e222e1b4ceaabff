package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// staffMiddleware admits agency accounts (staff or admin); client-portal
// accounts are rejected.
func staffMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin || claims.IsStaff {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// clientScope restricts the client_id a client-portal account may address.
// Agency accounts pass through untouched; client accounts get their own
// client_id enforced. Returns the client_id the handler must scope to, empty
// for unrestricted.
func clientScope(ctx echo.Context, requested string) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}
	if claims.IsAdmin || claims.IsStaff {
		return requested, nil
	}
	if !claims.IsClient || claims.ClientID == "" {
		return "", errHttpForbidden
	}
	if requested != "" && requested != claims.ClientID {
		return "", errHttpForbidden
	}
	return claims.ClientID, nil
}
