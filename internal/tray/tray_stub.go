//go:build !tray

package tray

func Run(Setup) error {
	return ErrUnavailable
}
