package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sngm3741/inquiry-api/internal/config"
	commonhttp "github.com/sngm3741/inquiry-api/internal/interfaces/http/common"
)

var (
	errMissingAuthorization = errors.New("Authorization ヘッダーがありません")
	errNotBearer            = errors.New("Bearer トークンを指定してください")
	errEmptyToken           = errors.New("アクセストークンが空です")
	errNoVerifier           = errors.New("認証設定が構成されていません")
	errInvalidToken         = errors.New("アクセストークンが無効です")
)

type operatorClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// operatorVerifier は 1 つの発行元設定に対応する検証器。
type operatorVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// newOperatorVerifiers は JWT 設定ごとに HS256 専用のパーサーを用意する。
// Issuer/Audience の検証はパーサーに任せる。
func newOperatorVerifiers(configs []config.JWTConfig, audience string) []operatorVerifier {
	verifiers := make([]operatorVerifier, 0, len(configs))
	for _, cfg := range configs {
		opts := []jwt.ParserOption{
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithLeeway(30 * time.Second),
		}
		if cfg.Issuer != "" {
			opts = append(opts, jwt.WithIssuer(cfg.Issuer))
		}
		if audience != "" {
			opts = append(opts, jwt.WithAudience(audience))
		}
		verifiers = append(verifiers, operatorVerifier{
			secret: cfg.Secret,
			parser: jwt.NewParser(opts...),
		})
	}
	return verifiers
}

func (v operatorVerifier) verify(tokenString string) (commonhttp.Operator, bool) {
	claims := &operatorClaims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return commonhttp.Operator{}, false
	}
	return commonhttp.Operator{
		ID:     claims.Subject,
		Name:   claims.Name,
		Issuer: claims.Issuer,
	}, true
}

// authenticateOperator は Bearer トークンを取り出し、いずれかの検証器で通ればオペレーターを返す。
func (s *Server) authenticateOperator(r *http.Request) (commonhttp.Operator, error) {
	tokenString, err := bearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return commonhttp.Operator{}, err
	}
	if len(s.verifiers) == 0 {
		return commonhttp.Operator{}, errNoVerifier
	}
	for _, v := range s.verifiers {
		if operator, ok := v.verify(tokenString); ok {
			return operator, nil
		}
	}
	return commonhttp.Operator{}, errInvalidToken
}

func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errMissingAuthorization
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", errNotBearer
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", errEmptyToken
	}
	return token, nil
}

// requireOperator は管理 API 用の認証ミドルウェア。失敗時は 401 を返す。
func (s *Server) requireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operator, err := s.authenticateOperator(r)
		if err != nil {
			commonhttp.WriteJSON(s.logger, w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(commonhttp.ContextWithOperator(r.Context(), operator)))
	})
}
