package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/chainkt/chainkt/internal/kotlin"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(oldWd) })
	if err := os.Chdir(tempDir); err != nil {
		t.Fatal(err)
	}
	return tempDir
}

func TestScannerBasic(t *testing.T) {
	chdirTemp(t)

	testFiles := []string{"Main.kt", "Utils.kt", "build.gradle.kts", "README.md"}
	for _, file := range testFiles {
		if err := os.WriteFile(file, []byte("fun main() {}"), 0o644); err != nil {
			t.Fatalf("Failed to create test file %s: %v", file, err)
		}
	}

	s := New(Config{Extensions: kotlin.Extensions()})

	files, err := s.ScanTargets(context.Background(), []string{"."})
	if err != nil {
		t.Errorf("ScanTargets() error = %v", err)
	}

	// Should find .kt and .kts files but not .md files
	expectedCount := 3
	if len(files) != expectedCount {
		t.Errorf("Expected %d files, got %d: %v", expectedCount, len(files), files)
	}
}

func TestScannerExplicitFileSkipsExtensionFilter(t *testing.T) {
	chdirTemp(t)

	if err := os.WriteFile("notes.txt", []byte("for (x in xs) {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(Config{Extensions: kotlin.Extensions()})
	files, err := s.ScanTargets(context.Background(), []string{"notes.txt"})
	if err != nil {
		t.Errorf("ScanTargets() error = %v", err)
	}
	if len(files) != 1 {
		t.Errorf("Expected 1 file for an explicitly named target, got %d", len(files))
	}
}

func TestScannerWithGitignore(t *testing.T) {
	chdirTemp(t)

	gitignoreContent := "*.tmp\nIgnored.kt\n"
	if err := os.WriteFile(".gitignore", []byte(gitignoreContent), 0o644); err != nil {
		t.Fatalf("Failed to create .gitignore: %v", err)
	}

	testFiles := []string{"Main.kt", "Ignored.kt", "temp.tmp"}
	for _, file := range testFiles {
		if writeErr := os.WriteFile(file, []byte("fun main() {}"), 0o644); writeErr != nil {
			t.Fatalf("Failed to create test file %s: %v", file, writeErr)
		}
	}

	s := New(Config{
		Extensions:  kotlin.Extensions(),
		NoGitignore: false,
	})

	files, err := s.ScanTargets(context.Background(), []string{"."})
	if err != nil {
		t.Errorf("ScanTargets() error = %v", err)
	}

	// Should only find Main.kt (Ignored.kt and temp.tmp should be filtered)
	expectedCount := 1
	if len(files) != expectedCount {
		t.Errorf("Expected %d files, got %d: %v", expectedCount, len(files), files)
	}
	if len(files) > 0 && filepath.Base(files[0]) != "Main.kt" {
		t.Errorf("Expected Main.kt, got %s", filepath.Base(files[0]))
	}
}

func TestScannerNoGitignore(t *testing.T) {
	chdirTemp(t)

	gitignoreContent := "*.tmp\nIgnored.kt\n"
	if err := os.WriteFile(".gitignore", []byte(gitignoreContent), 0o644); err != nil {
		t.Fatalf("Failed to create .gitignore: %v", err)
	}

	testFiles := []string{"Main.kt", "Ignored.kt"}
	for _, file := range testFiles {
		if writeErr := os.WriteFile(file, []byte("fun main() {}"), 0o644); writeErr != nil {
			t.Fatalf("Failed to create test file %s: %v", file, writeErr)
		}
	}

	s := New(Config{
		Extensions:  kotlin.Extensions(),
		NoGitignore: true, // Disable gitignore filtering
	})

	files, err := s.ScanTargets(context.Background(), []string{"."})
	if err != nil {
		t.Errorf("ScanTargets() error = %v", err)
	}

	// Should find both .kt files when gitignore is disabled
	expectedCount := 2
	if len(files) != expectedCount {
		t.Errorf("Expected %d files, got %d: %v", expectedCount, len(files), files)
	}
}

func TestScannerIncludeExclude(t *testing.T) {
	chdirTemp(t)

	testFiles := []string{"Main.kt", "MainTest.kt", "Utils.kt"}
	for _, file := range testFiles {
		if err := os.WriteFile(file, []byte("fun main() {}"), 0o644); err != nil {
			t.Fatalf("Failed to create test file %s: %v", file, err)
		}
	}

	s := New(Config{
		Extensions:   kotlin.Extensions(),
		IncludeGlobs: []string{"*Test.kt"},
	})

	files, err := s.ScanTargets(context.Background(), []string{"."})
	if err != nil {
		t.Errorf("ScanTargets() error = %v", err)
	}

	expectedCount := 1
	if len(files) != expectedCount {
		t.Errorf("Expected %d files, got %d: %v", expectedCount, len(files), files)
	}
	if len(files) > 0 && filepath.Base(files[0]) != "MainTest.kt" {
		t.Errorf("Expected MainTest.kt, got %s", filepath.Base(files[0]))
	}

	s = New(Config{
		Extensions:   kotlin.Extensions(),
		ExcludeGlobs: []string{"*Test.kt"},
	})

	files, err = s.ScanTargets(context.Background(), []string{"."})
	if err != nil {
		t.Errorf("ScanTargets() error = %v", err)
	}

	expectedCount = 2
	if len(files) != expectedCount {
		t.Errorf("Expected %d files, got %d: %v", expectedCount, len(files), files)
	}
}

func TestScannerMaxBytes(t *testing.T) {
	chdirTemp(t)

	smallContent := "fun main() {}"
	largeContent := make([]byte, 1000)
	for i := range largeContent {
		largeContent[i] = 'a'
	}

	if err := os.WriteFile("Small.kt", []byte(smallContent), 0o644); err != nil {
		t.Fatalf("Failed to create small file: %v", err)
	}
	if err := os.WriteFile("Large.kt", largeContent, 0o644); err != nil {
		t.Fatalf("Failed to create large file: %v", err)
	}

	s := New(Config{
		Extensions: kotlin.Extensions(),
		MaxBytes:   100, // Only allow files smaller than 100 bytes
	})

	files, err := s.ScanTargets(context.Background(), []string{"."})
	if err != nil {
		t.Errorf("ScanTargets() error = %v", err)
	}

	expectedCount := 1
	if len(files) != expectedCount {
		t.Errorf("Expected %d files, got %d: %v", expectedCount, len(files), files)
	}
	if len(files) > 0 && filepath.Base(files[0]) != "Small.kt" {
		t.Errorf("Expected Small.kt, got %s", filepath.Base(files[0]))
	}
}

func TestScannerDirectorySkipping(t *testing.T) {
	chdirTemp(t)

	// Create directories that should be skipped
	skipDirs := []string{".git", "build", "node_modules", ".gradle"}
	for _, dir := range skipDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
		filePath := filepath.Join(dir, "Hidden.kt")
		if err := os.WriteFile(filePath, []byte("fun main() {}"), 0o644); err != nil {
			t.Fatalf("Failed to create file in %s: %v", dir, err)
		}
	}

	if err := os.WriteFile("Main.kt", []byte("fun main() {}"), 0o644); err != nil {
		t.Fatalf("Failed to create Main.kt: %v", err)
	}

	s := New(Config{Extensions: kotlin.Extensions()})

	files, err := s.ScanTargets(context.Background(), []string{"."})
	if err != nil {
		t.Errorf("ScanTargets() error = %v", err)
	}

	// Should only find Main.kt (files in skipped directories should be ignored)
	expectedCount := 1
	if len(files) != expectedCount {
		t.Errorf("Expected %d files, got %d: %v", expectedCount, len(files), files)
	}
	if len(files) > 0 && filepath.Base(files[0]) != "Main.kt" {
		t.Errorf("Expected Main.kt, got %s", filepath.Base(files[0]))
	}
}

func TestScannerDeduplicates(t *testing.T) {
	chdirTemp(t)

	if err := os.WriteFile("Main.kt", []byte("fun main() {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(Config{Extensions: kotlin.Extensions()})
	files, err := s.ScanTargets(context.Background(), []string{".", "."})
	if err != nil {
		t.Errorf("ScanTargets() error = %v", err)
	}
	if len(files) != 1 {
		t.Errorf("Expected 1 deduplicated file, got %d: %v", len(files), files)
	}
}
