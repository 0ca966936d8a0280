package catalog

const nativePlaceholder = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"

func ether() NativeToken {
	return NativeToken{Symbol: "ETH", Name: "Ether", Decimals: 18, Address: nativePlaceholder}
}

func defaultChains() []Chain {
	return []Chain{
		{
			ID:          1,
			Key:         "ETHEREUM",
			Name:        "Ethereum Mainnet",
			RPCURL:      "https://ethereum-rpc.publicnode.com",
			ExplorerURL: "https://etherscan.io",
			Native:      ether(),
		},
		{
			ID:          8453,
			Key:         "BASE",
			Name:        "Base",
			RPCURL:      "https://mainnet.base.org",
			ExplorerURL: "https://basescan.org",
			Native:      ether(),
		},
		{
			ID:          137,
			Key:         "POLYGON",
			Name:        "Polygon",
			RPCURL:      "https://polygon-rpc.com",
			ExplorerURL: "https://polygonscan.com",
			Native: NativeToken{
				Symbol: "POL", Name: "POL", Decimals: 18,
				Address: "0x0000000000000000000000000000000000000000",
			},
		},
		{
			ID:          10,
			Key:         "OPTIMISM",
			Name:        "Optimism",
			RPCURL:      "https://mainnet.optimism.io",
			ExplorerURL: "https://optimistic.etherscan.io",
			Native:      ether(),
		},
		{
			ID:          42161,
			Key:         "ARBITRUM",
			Name:        "Arbitrum",
			RPCURL:      "https://arb1.arbitrum.io/rpc",
			ExplorerURL: "https://arbiscan.io",
			Native:      ether(),
		},
		{
			ID:          43114,
			Key:         "AVALANCHE",
			Name:        "Avalanche C-Chain",
			RPCURL:      "https://api.avax.network/ext/bc/C/rpc",
			ExplorerURL: "https://snowtrace.io",
			Native: NativeToken{
				Symbol: "AVAX", Name: "Avalanche", Decimals: 18,
				Address: "0x0000000000000000000000000000000000000000",
			},
		},
	}
}

func defaultTokens() []Token {
	return []Token{
		{
			Symbol: "USDC", Name: "USD Coin", Decimals: 6, Version: "2",
			Addresses: map[string]string{
				"BASE":      "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
				"POLYGON":   "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174",
				"OPTIMISM":  "0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85",
				"ARBITRUM":  "0xFF970A61A04b1cA14834A43f5dE4533eBDDB5CC8",
				"AVALANCHE": "0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E",
				"ETHEREUM":  "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
			},
		},
		{
			Symbol: "DAI", Name: "Dai Stablecoin", Decimals: 18, Version: "1",
			Addresses: map[string]string{
				"BASE":     "0x50C47525c143017431176112B604b2346e5197D2",
				"POLYGON":  "0x8f3Cf7ad23Cd3CaDbD9735AFf958023239c6A063",
				"OPTIMISM": "0xDA10009cBd5D07dd0CeCc66161FC93D517C2Ad9B",
				"ARBITRUM": "0xDA10009cBd5D07dd0CeCc66161FC93D517C2Ad9B",
				"ETHEREUM": "0x6b175474e89094c44da98b954eedeac495271d0f",
			},
		},
		{
			Symbol: "USDT", Name: "Tether USD", Decimals: 6, Version: "1",
			Addresses: map[string]string{
				"BASE":     "0x68bcc7F1190AF20e7b572BCfb431c3Ac10A936Ab",
				"POLYGON":  "0xc2132D05D31c914a87C6611C10748AEb04B58e8F",
				"ETHEREUM": "0xdac17f958d2ee523a2206206994597c13d831ec7",
			},
		},
		{
			Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18, Version: "1",
			Addresses: map[string]string{
				"BASE":     "0x4200000000000000000000000000000000000006",
				"POLYGON":  "0x7ceB237478F94617678c6Ad0078A734207646a00",
				"ETHEREUM": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
			},
		},
		{
			Symbol: "EURC", Name: "Euro Coin", Decimals: 6, Version: "1",
			Addresses: map[string]string{
				"BASE":      "0x60a3e35cc302bfa44cb288bc5a4f316fdb1adb42",
				"ETHEREUM":  "0x1abaea1f7c830bd89acc67ec4af516284b1bc33c",
				"AVALANCHE": "0xc891eb4cbdeff6e073e859e987815ed1505c2acd",
			},
		},
		{
			Symbol: "POL", Name: "Polygon Native", Decimals: 18, Version: "1",
			Addresses: map[string]string{
				"BASE":     "0xb4562d269b543e0edf41673f755004a909d6a9a3",
				"POLYGON":  "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee",
				"ETHEREUM": "0x455e53cbb86018ac2b8092fdcd39d8444affc3f6",
			},
		},
	}
}
