package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const DefaultPath = "./config/application.yaml"

type Application struct {
	Host         string       `koanf:"host"`
	Addr         string       `koanf:"addr"`
	Database     Database     `koanf:"db"`
	OrderService OrderService `koanf:"orderservice"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type OrderService struct {
	// Locale used for the month part of generated codes, e.g. "pt_BR".
	Locale       string       `koanf:"locale"`
	ApprovalPoll ApprovalPoll `koanf:"approvalpoll"`
}

// ApprovalPoll bounds the re-fetch loop run after a budget is approved.
type ApprovalPoll struct {
	Interval time.Duration `koanf:"interval"`
	Timeout  time.Duration `koanf:"timeout"`
}

func Defaults() Application {
	return Application{
		Host: "http://localhost:3000",
		Addr: ":8181",
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "gestor",
			Pass:   "",
			Name:   "gestor",
			Schema: "gestor",
		},
		OrderService: OrderService{
			Locale: "pt_BR",
			ApprovalPoll: ApprovalPoll{
				Interval: 250 * time.Millisecond,
				Timeout:  3 * time.Second,
			},
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "GESTOR_",
		TransformFunc: func(k, v string) (string, any) {
			// GESTOR_DB_HOST -> db.host
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "GESTOR_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
