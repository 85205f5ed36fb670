package auth

// TokenStore defines the interface for token storage operations
// This allows us to mock the keyring in tests
type TokenStore interface {
	SaveToken(env, token, role string) error
	LoadToken(env string) (token, role string, err error)
	DeleteToken(env string) error
}

// defaultTokenStore implements TokenStore using the OS keyring
type defaultTokenStore struct{}

var Default TokenStore = &defaultTokenStore{}

func (d *defaultTokenStore) SaveToken(env, token, role string) error {
	return SaveToken(env, token, role)
}

func (d *defaultTokenStore) LoadToken(env string) (string, string, error) {
	return LoadToken(env)
}

func (d *defaultTokenStore) DeleteToken(env string) error {
	return DeleteToken(env)
}

// Memory is an in-memory TokenStore for tests and for flows that must not
// touch the OS keyring.
type Memory struct {
	tokens map[string]string
	roles  map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tokens: make(map[string]string),
		roles:  make(map[string]string),
	}
}

func (m *Memory) SaveToken(env, token, role string) error {
	m.tokens[env] = token
	m.roles[env] = role
	return nil
}

func (m *Memory) LoadToken(env string) (string, string, error) {
	token, ok := m.tokens[env]
	if !ok {
		return "", "", ErrNotAuthenticated
	}
	return token, m.roles[env], nil
}

func (m *Memory) DeleteToken(env string) error {
	delete(m.tokens, env)
	delete(m.roles, env)
	return nil
}

// Len reports how many environments currently hold a token.
func (m *Memory) Len() int {
	return len(m.tokens)
}
