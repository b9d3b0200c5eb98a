package paths

import (
	"os"
	"path/filepath"

	"github.com/quantmind-br/pacfront/internal/config"
)

// LocalDBDir é o banco local do pacman; muda a cada instalação ou remoção.
const LocalDBDir = "/var/lib/pacman/local"

// DesktopFileName é o nome do lançador instalado em GetAppsDir.
const DesktopFileName = "pacfront.desktop"

// Resolver centraliza caminhos padrão do pacfront.
// Ele calcula diretórios base a partir de HOME e da configuração.
type Resolver struct {
	homeDir string
	cfg     *config.Config
}

// NewResolver cria um Resolver usando o HOME do usuário atual.
func NewResolver(cfg *config.Config) *Resolver {
	homeDir, _ := os.UserHomeDir()
	return &Resolver{
		homeDir: homeDir,
		cfg:     cfg,
	}
}

// NewResolverWithHome cria um Resolver com homeDir explícito (útil para testes).
func NewResolverWithHome(cfg *config.Config, homeDir string) *Resolver {
	return &Resolver{
		homeDir: homeDir,
		cfg:     cfg,
	}
}

// HomeDir retorna o diretório HOME resolvido.
func (r *Resolver) HomeDir() string {
	return r.homeDir
}

// GetAppsDir retorna $XDG_DATA_HOME/applications ou ~/.local/share/applications.
func (r *Resolver) GetAppsDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "applications")
	}
	return filepath.Join(r.homeDir, ".local", "share", "applications")
}

// GetDesktopFile retorna o caminho completo do lançador.
func (r *Resolver) GetDesktopFile() string {
	return filepath.Join(r.GetAppsDir(), DesktopFileName)
}

// GetDataDir retorna o diretório de dados, respeitando cfg.Paths.DataDir se definido.
func (r *Resolver) GetDataDir() string {
	if r.cfg != nil && r.cfg.Paths.DataDir != "" {
		return r.cfg.Paths.DataDir
	}
	return filepath.Join(r.homeDir, ".local", "share", "pacfront")
}

// GetCustomThemeFile retorna o arquivo do tema Custom.
func (r *Resolver) GetCustomThemeFile() string {
	if r.cfg != nil && r.cfg.UI.CustomThemeFile != "" {
		return r.cfg.UI.CustomThemeFile
	}
	return filepath.Join(r.GetDataDir(), "custom-theme.toml")
}

// GetCrashLog retorna o caminho do log de falhas.
func (r *Resolver) GetCrashLog() string {
	if r.cfg != nil && r.cfg.Paths.CrashLog != "" {
		return r.cfg.Paths.CrashLog
	}
	return filepath.Join(os.TempDir(), "pacfront_error.log")
}
