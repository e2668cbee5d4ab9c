package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"

	"fair-draw-service/internal/config"
)

// Класс для нагрузки: большой пул, чтобы он не исчерпался за время теста.
const (
	loadK = 200
	loadL = 10
	loadN = 40
)

var resultsFile string

func main() {
	defaults := loadDefaults()
	var (
		baseURL   = flag.String("url", defaults.BaseURL, "Base URL сервиса")
		rate      = flag.Int("rate", defaults.Rate, "Запросов в секунду")
		duration  = flag.Duration("duration", defaults.Duration, "Длительность теста (например, 60s)")
		className = flag.String("class", defaults.ClassName, "Имя тестового класса")
		setupOnly = flag.Bool("setup-only", false, "Только подготовка окружения (класс, список, план)")
		report    = flag.Bool("report", false, "Показать отчёт из сохранённых результатов")
		plot      = flag.Bool("plot", false, "Подсказка по построению HTML графика")
	)
	flag.StringVar(&resultsFile, "results", defaults.ResultsPath, "Файл с результатами")
	flag.Parse()

	switch {
	case *report:
		if err := renderReport(os.Stdout, resultsFile); err != nil {
			log.Fatalf("Не удалось построить отчёт: %v", err)
		}
		return
	case *plot:
		writePlotInstructions(os.Stdout)
		return
	}

	fmt.Println("1. Подготовка тестового класса...")
	if err := setupClass(*baseURL, *className); err != nil {
		log.Fatalf("Ошибка при подготовке окружения: %v", err)
	}
	if *setupOnly {
		return
	}

	fmt.Printf("2. Нагрузка: %s, %d req/s, %s\n", *baseURL, *rate, *duration)
	if err := runLoadTest(*baseURL, *rate, *duration, *className); err != nil {
		log.Fatalf("Ошибка при нагрузочном тестировании: %v", err)
	}
	fmt.Println("Для анализа: go run ./load/cli -report")
}

// loadDefaults берёт значения по умолчанию из config.yaml; без него используются встроенные.
func loadDefaults() config.LoadTestConfig {
	cfg, err := config.Load()
	if err != nil {
		return config.LoadTestConfig{
			BaseURL:     "http://localhost:8080",
			Rate:        5,
			Duration:    60 * time.Second,
			ClassName:   "load-class",
			ResultsPath: "load/artifacts/results.bin",
		}
	}
	return cfg.LoadTests
}

// setupClass создаёт класс, задаёт список и готовит план.
func setupClass(baseURL, className string) error {
	names := make([]string, loadN)
	for i := range names {
		names[i] = fmt.Sprintf("load-%02d", i+1)
	}
	steps := []struct {
		path    string
		payload any
		accept  []int
	}{
		{"/classes/add", map[string]string{"class_name": className}, []int{http.StatusCreated, http.StatusConflict}},
		{"/roster/set", map[string]any{"class_name": className, "k": loadK, "l": loadL, "n": loadN, "names": names}, []int{http.StatusOK}},
		{"/plan/prepare", map[string]string{"class_name": className}, []int{http.StatusOK}},
	}
	for _, step := range steps {
		if err := sendOnce(baseURL+step.path, step.payload, step.accept); err != nil {
			return fmt.Errorf("%s: %w", step.path, err)
		}
	}
	fmt.Printf("Класс '%s' готов: %d вызовов в пуле\n", className, loadK*loadL)
	return nil
}

// sendOnce отправляет один запрос через vegeta и проверяет код ответа.
func sendOnce(target string, payload any, accept []int) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	targeter := vegeta.NewStaticTargeter(vegeta.Target{
		Method: http.MethodPost,
		URL:    target,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   body,
	})
	attacker := vegeta.NewAttacker(vegeta.Timeout(2 * time.Minute))
	var first *vegeta.Result
	for res := range attacker.Attack(targeter, vegeta.Rate{Freq: 1, Per: time.Second}, time.Second, "setup") {
		if first == nil {
			first = res
		}
	}
	if first == nil {
		return fmt.Errorf("no response")
	}
	for _, code := range accept {
		if int(first.Code) == code {
			return nil
		}
	}
	return fmt.Errorf("unexpected status %d: %s", first.Code, bytes.TrimSpace(first.Body))
}

func runLoadTest(baseURL string, rate int, duration time.Duration, className string) error {
	if rate <= 0 {
		return fmt.Errorf("rate must be positive, got %d", rate)
	}
	attacker := vegeta.NewAttacker(
		vegeta.Timeout(30*time.Second),
		vegeta.Workers(uint64(rate)),
	)

	var (
		metrics    vegeta.Metrics
		allResults []vegeta.Result
	)
	targeter := newDrawTargeter(baseURL, className)
	for res := range attacker.Attack(targeter, vegeta.Rate{Freq: rate, Per: time.Second}, duration, "draw") {
		metrics.Add(res)
		allResults = append(allResults, *res)
	}
	metrics.Close()

	if err := saveResults(allResults); err != nil {
		return fmt.Errorf("сохранить результаты: %w", err)
	}
	return vegeta.NewTextReporter(&metrics)(os.Stdout)
}

// newDrawTargeter чередует вызов ученика (с парой отсутствующих) и чтение списка.
func newDrawTargeter(baseURL, className string) vegeta.Targeter {
	var i int
	rosterURL := fmt.Sprintf("%s/roster/get?class_name=%s", baseURL, url.QueryEscape(className))
	return func(t *vegeta.Target) error {
		i++
		if i%4 == 0 {
			*t = vegeta.Target{Method: http.MethodGet, URL: rosterURL}
			return nil
		}
		absent := []string{
			fmt.Sprintf("load-%02d", rand.IntN(loadN)+1), // #nosec G404
			fmt.Sprintf("load-%02d", rand.IntN(loadN)+1), // #nosec G404
		}
		body, err := json.Marshal(map[string]any{"class_name": className, "absent_names": absent})
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		*t = vegeta.Target{
			Method: http.MethodPost,
			URL:    baseURL + "/draw/pick",
			Header: http.Header{"Content-Type": []string{"application/json"}},
			Body:   body,
		}
		return nil
	}
}

// saveResults сохраняет результаты в бинарный файл vegeta.
func saveResults(results []vegeta.Result) error {
	if err := os.MkdirAll(filepath.Dir(resultsFile), 0o755); err != nil {
		return fmt.Errorf("создать директорию: %w", err)
	}
	file, err := os.Create(resultsFile)
	if err != nil {
		return fmt.Errorf("создать файл: %w", err)
	}
	defer file.Close()

	encoder := vegeta.NewEncoder(file)
	for i := range results {
		if err := encoder.Encode(&results[i]); err != nil {
			return fmt.Errorf("записать результат: %w", err)
		}
	}
	fmt.Printf("Результаты сохранены в %s\n", resultsFile)
	return nil
}

func renderReport(out io.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open results: %w", err)
	}
	defer file.Close()

	decoder := vegeta.NewDecoder(file)
	var metrics vegeta.Metrics
	for {
		var res vegeta.Result
		if err := decoder.Decode(&res); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("decode result: %w", err)
		}
		metrics.Add(&res)
	}
	metrics.Close()

	if err := vegeta.NewTextReporter(&metrics)(out); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func writePlotInstructions(out io.Writer) {
	fmt.Fprintln(out, "Для генерации HTML графика используйте CLI утилиту vegeta:")
	fmt.Fprintf(out, "  vegeta plot %s > load/artifacts/plot.html\n", resultsFile)
	fmt.Fprintln(out, "Установка: go install github.com/tsenart/vegeta/v12@latest")
}
