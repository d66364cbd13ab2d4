package access

import "golang.org/x/crypto/bcrypt"

// HashGameMasterKey deriva el hash bcrypt que va en la configuración.
func HashGameMasterKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyGameMasterKey compara una llave presentada contra el hash
// configurado.
func VerifyGameMasterKey(hash, key string) error {
	if hash == "" || key == "" {
		return ErrInvalidGMKey()
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) != nil {
		return ErrInvalidGMKey()
	}
	return nil
}
