package action

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"provision/internal/inputs"
	"provision/internal/runner"
)

// VhostTemplate is the Apache virtual-host rendered for the app.
const VhostTemplate = `<VirtualHost *:80>
    ServerName {{server_name}}
    DocumentRoot {{document_root}}

    <Directory {{document_root}}>
        AllowOverride All
        Require all granted
    </Directory>

    ErrorLog ${APACHE_LOG_DIR}/{{app_name}}-error.log
    CustomLog ${APACHE_LOG_DIR}/{{app_name}}-access.log combined
</VirtualHost>
`

// Vhost ensures the rendered virtual-host file exists at the vhost
// path. Drifted content counts as unsatisfied and is rewritten.
type Vhost struct {
	meta
}

// NewVhost creates the vhost-template action.
func NewVhost(timeout time.Duration) *Vhost {
	return &Vhost{
		meta: meta{name: "web.vhost", dependsOn: []string{"source.clone"}, timeout: timeout},
	}
}

func (v *Vhost) render(ec *inputs.Context) (string, error) {
	// VhostTemplate mixes {{param}} placeholders with Apache's own
	// ${APACHE_LOG_DIR} syntax; only the former are resolved.
	return resolveTemplate(VhostTemplate, ec)
}

func (v *Vhost) Check(ctx context.Context, ec *inputs.Context) (bool, error) {
	want, err := v.render(ec)
	if err != nil {
		return false, err
	}
	have, err := os.ReadFile(ec.Value(inputs.ParamVhostPath))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(have, []byte(want)), nil
}

func (v *Vhost) Apply(ctx context.Context, ec *inputs.Context) error {
	content, err := v.render(ec)
	if err != nil {
		return err
	}
	path := ec.Value(inputs.ParamVhostPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// WebEnable ensures the site is enabled and the web server has picked
// up the configuration.
type WebEnable struct {
	meta
	run runner.Runner
}

// NewWebEnable creates the site-enable action.
func NewWebEnable(run runner.Runner, timeout time.Duration) *WebEnable {
	return &WebEnable{
		meta: meta{name: "web.enable", dependsOn: []string{"web.vhost"}, timeout: timeout},
		run:  run,
	}
}

func (w *WebEnable) Check(ctx context.Context, ec *inputs.Context) (bool, error) {
	link := filepath.Join("/etc/apache2/sites-enabled", ec.Value(inputs.ParamAppName)+".conf")
	if _, err := os.Lstat(link); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (w *WebEnable) Apply(ctx context.Context, ec *inputs.Context) error {
	res, err := w.run.Run(ctx, "a2ensite", ec.Value(inputs.ParamAppName))
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("a2ensite exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	res, err = w.run.Run(ctx, "systemctl", "reload", "apache2")
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("reloading apache2 exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}
