package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/ayusman/natya/internal/app"
	"github.com/ayusman/natya/internal/server"
	"github.com/ayusman/natya/internal/store"
	"github.com/ayusman/natya/internal/tray"
)

func main() {
	fmt.Println("Natya - Pose Retargeting Engine")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".natya")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "natya.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	application := app.New(app.Config{
		Store:   st,
		SinkDir: filepath.Join(dataDir, "sinks"),
	})

	if err := application.LoadStoredState(); err != nil {
		log.Fatalf("Failed to restore state: %v", err)
	}
	if err := application.DiscoverSinks(); err != nil {
		log.Printf("Sink discovery failed: %v", err)
	}

	if err := application.Start(); err != nil {
		log.Printf("Pipeline not started: %v", err)
	}
	application.SetEnabled(true)

	// Find web directory
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       application,
	})

	addr := ":8080"
	go func() {
		fmt.Printf("Starting server on %s\n", addr)
		if err := srv.ListenAndServe(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	t := tray.New()
	t.SetRig(application.RigName())
	t.OnToggle(func(enabled bool) {
		application.SetEnabled(enabled)
	})
	t.OnCalibrate(func() {
		application.StartCalibration()
	})
	t.OnSettings(func() {
		openBrowser("http://localhost" + addr)
	})
	t.OnQuit(func() {
		application.Stop()
	})

	// Blocks until quit
	t.Run()
}

// openBrowser opens the settings UI in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.natya/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".natya", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
