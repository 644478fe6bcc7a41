// bm13xx-driver: host-side driver for BM13xx Bitcoin-mining ASIC chains.
// Copyright (C) 2026  Guillermo Perry
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/gousb"
	"github.com/spf13/cobra"

	"github.com/guiperry/bm13xx-driver/internal/bm13xxasic/bm1366"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxasic/bm1370"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxchain"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxwork"
	"github.com/guiperry/bm13xx-driver/internal/config"
	"github.com/guiperry/bm13xx-driver/internal/logging"
	"github.com/guiperry/bm13xx-driver/internal/transport"
)

func main() {
	var (
		chipModel  string
		asicCnt    int
		domainCnt  int
		baudrate   int
		vendorID   uint16
		productID  uint16
		logLevel   string
		difficulty uint32
		nBits      uint32
	)

	rootCmd := &cobra.Command{
		Use:   "bm13xxctl",
		Short: "Drive a chain of BM13xx Bitcoin-mining ASICs over USB",
	}
	rootCmd.PersistentFlags().StringVar(&chipModel, "chip", "", "chip model: bm1366 or bm1370 (empty = from config/.env)")
	rootCmd.PersistentFlags().IntVar(&asicCnt, "asic-cnt", 0, "expected chip count on the chain (0 = from config/.env)")
	rootCmd.PersistentFlags().IntVar(&domainCnt, "domain-cnt", 0, "number of hashing voltage domains (0 = from config/.env)")
	rootCmd.PersistentFlags().IntVar(&baudrate, "baudrate", 0, "UART baudrate to switch to after init (0 = from config/.env)")
	rootCmd.PersistentFlags().Uint16Var(&vendorID, "vid", uint16(transport.DefaultVendorID), "USB vendor ID")
	rootCmd.PersistentFlags().Uint16Var(&productID, "pid", uint16(transport.DefaultProductID), "USB product ID")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Enumerate chips on the chain and report their addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, chain, usb, err := setup(chipModel, asicCnt, domainCnt, vendorID, productID, logLevel)
			if err != nil {
				return err
			}
			defer usb.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := chain.Enumerate(ctx); err != nil {
				return fmt.Errorf("enumerate: %w", err)
			}
			logger.Info("found %d chips, address interval %d", chain.AsicCnt, chain.AsicAddrInterval)
			fmt.Printf("chips: %d  addr-interval: %d\n", chain.AsicCnt, chain.AsicAddrInterval)
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Enumerate and run the chip init sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, chain, usb, err := setup(chipModel, asicCnt, domainCnt, vendorID, productID, logLevel)
			if err != nil {
				return err
			}
			defer usb.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := chain.Enumerate(ctx); err != nil {
				return fmt.Errorf("enumerate: %w", err)
			}

			diff := difficulty
			if nBits != 0 {
				diff = bm13xxwork.ChipDifficulty(bm13xxwork.DifficultyFromBits(nBits), chain.AsicCnt)
			}
			if diff == 0 {
				diff = 1
			}
			if err := chain.Init(ctx, diff); err != nil {
				return fmt.Errorf("init: %w", err)
			}
			logger.Info("chain initialized at difficulty %d", diff)

			if baudrate == 0 {
				cfg, err := config.LoadChainConfig()
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				baudrate = cfg.Baudrate
			}
			if baudrate > 0 {
				if err := chain.SetBaudrate(ctx, uint32(baudrate)); err != nil {
					return fmt.Errorf("set baudrate: %w", err)
				}
				logger.Info("baudrate switched to %d", baudrate)
			}
			return nil
		},
	}
	initCmd.Flags().Uint32Var(&difficulty, "difficulty", 1, "per-chip ticket-mask difficulty")
	initCmd.Flags().Uint32Var(&nBits, "nbits", 0, "job nBits to derive per-chip difficulty from (overrides --difficulty)")

	rootCmd.AddCommand(scanCmd, initCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup resolves configuration (flags override config/.env), opens the USB
// transport, and builds a Chain for the requested or configured chip
// model.
func setup(chipModel string, asicCnt, domainCnt int, vendorID, productID uint16, logLevel string) (*logging.Logger, *bm13xxchain.Chain, *transport.USB, error) {
	cfg, err := config.LoadChainConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if chipModel == "" {
		chipModel = cfg.ChipModel
	}
	if asicCnt == 0 {
		asicCnt = cfg.AsicCnt
	}
	if domainCnt == 0 {
		domainCnt = cfg.DomainCnt
	}

	logger, err := logging.NewLogger(&logging.LoggingConfig{Level: logLevel, Format: "text", Output: "stdout"})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	var asic interface {
		ChipID() uint16
	}

	usb, err := transport.OpenUSB(gousb.ID(vendorID), gousb.ID(productID))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open USB transport: %w", err)
	}

	var chain *bm13xxchain.Chain
	switch chipModel {
	case "bm1370":
		chip := bm1370.New()
		asic = chip
		chain = bm13xxchain.New(uint8(asicCnt), chip, uint8(domainCnt), usb)
	default:
		chip := bm1366.New()
		asic = chip
		chain = bm13xxchain.New(uint8(asicCnt), chip, uint8(domainCnt), usb)
	}
	logger.Info("using chip model 0x%04x", asic.ChipID())

	return logger, chain, usb, nil
}
