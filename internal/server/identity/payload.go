package identity

import (
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"google.golang.org/protobuf/types/known/structpb"
)

// Field names of the directory messages.
const (
	fieldID           = "id"
	fieldUsername     = "username"
	fieldEmail        = "email"
	fieldPassword     = "password"
	fieldPasswordHash = "password_hash"
	fieldFirstName    = "first_name"
	fieldLastName     = "last_name"
	fieldPhoneNumber  = "phone_number"
	fieldRole         = "role"
	fieldIsActive     = "is_active"
	fieldFound        = "found"
)

func lookupRequest(key, value string) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{key: value})
}

func createRequest(req models.NewIdentity) (*structpb.Struct, error) {
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	return structpb.NewStruct(map[string]any{
		fieldUsername:    req.Username,
		fieldEmail:       req.Email,
		fieldPassword:    req.Password,
		fieldFirstName:   req.FirstName,
		fieldLastName:    req.LastName,
		fieldPhoneNumber: req.PhoneNumber,
		fieldRole:        string(role),
	})
}

// found reports whether a lookup reply carries a user. Replies without the
// "found" field count as found when they carry an id.
func found(s *structpb.Struct) bool {
	if v, ok := s.GetFields()[fieldFound]; ok {
		return v.GetBoolValue()
	}
	return stringField(s, fieldID) != ""
}

func decodeIdentity(s *structpb.Struct) (*models.Identity, error) {
	id := stringField(s, fieldID)
	if id == "" {
		return nil, fmt.Errorf("directory reply without %q", fieldID)
	}
	role := models.Role(stringField(s, fieldRole))
	if role == "" {
		role = models.RoleUser
	}
	return &models.Identity{
		ID:           id,
		Username:     stringField(s, fieldUsername),
		Email:        stringField(s, fieldEmail),
		PasswordHash: stringField(s, fieldPasswordHash),
		FirstName:    stringField(s, fieldFirstName),
		LastName:     stringField(s, fieldLastName),
		PhoneNumber:  stringField(s, fieldPhoneNumber),
		Role:         role,
		Active:       s.GetFields()[fieldIsActive].GetBoolValue(),
	}, nil
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}
