package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Directory RPC methods.
const (
	ServiceName             = "users.UsersService"
	MethodCreateUser        = "/" + ServiceName + "/CreateUser"
	MethodGetUserByID       = "/" + ServiceName + "/GetUserById"
	MethodGetUserByUsername = "/" + ServiceName + "/GetUserByUsername"
)

// GRPCGateway implements Gateway against the users.UsersService directory.
// Messages travel as google.protobuf.Struct.
type GRPCGateway struct {
	conn grpc.ClientConnInterface
}

// NewGRPCGateway wraps conn, usually the result of Dial.
func NewGRPCGateway(conn grpc.ClientConnInterface) *GRPCGateway {
	return &GRPCGateway{conn: conn}
}

var _ Gateway = (*GRPCGateway)(nil)

// FindByUsername resolves an identity by username.
func (g *GRPCGateway) FindByUsername(ctx context.Context, username string) (*models.Identity, error) {
	return g.lookup(ctx, MethodGetUserByUsername, fieldUsername, username)
}

// FindByID resolves an identity by directory id.
func (g *GRPCGateway) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	return g.lookup(ctx, MethodGetUserByID, fieldID, id)
}

func (g *GRPCGateway) lookup(ctx context.Context, method, key, value string) (*models.Identity, error) {
	req, err := lookupRequest(key, value)
	if err != nil {
		return nil, err
	}
	resp := &structpb.Struct{}
	if err := g.conn.Invoke(ctx, method, req, resp); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("directory %s: %w", method, err)
	}
	if !found(resp) {
		return nil, common.ErrorNotFound
	}
	return decodeIdentity(resp)
}

// Create asks the directory to create an identity. Password hashing is done
// by the directory.
func (g *GRPCGateway) Create(ctx context.Context, req models.NewIdentity) (*models.Identity, error) {
	msg, err := createRequest(req)
	if err != nil {
		return nil, err
	}
	resp := &structpb.Struct{}
	if err := g.conn.Invoke(ctx, MethodCreateUser, msg, resp); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, fmt.Errorf("%w: %s", common.ErrUserAlreadyExists, status.Convert(err).Message())
		}
		return nil, fmt.Errorf("directory %s: %w", MethodCreateUser, err)
	}
	return decodeIdentity(resp)
}

// VerifyPassword checks password against the directory hash with bcrypt.
// Unknown and inactive identities and identities without a hash never match.
func (g *GRPCGateway) VerifyPassword(ctx context.Context, username, password string) (bool, error) {
	ident, err := g.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			burnCompare(password)
			return false, nil
		}
		return false, err
	}
	if !ident.Active || ident.PasswordHash == "" {
		burnCompare(password)
		return false, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(ident.PasswordHash), []byte(password)) == nil, nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// burnCompare spends roughly one bcrypt comparison so that misses take as
// long as real mismatches.
func burnCompare(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("gophauth-dummy-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
