package pkg

// ConfAddress is the config key for the interface and port the http server binds to
const ConfAddress = "address"

// ConfProviderURL is the config key for the identity provider base URL
const ConfProviderURL = "providerUrl"

// ConfEndUserIP is the config key for the network-origin placeholder sent on order start
const ConfEndUserIP = "endUserIp"

// ConfRedirectURL is the config key for the return URL embedded in launch deep links
const ConfRedirectURL = "redirectUrl"

// ConfPollInterval is the config key for the collect cadence
const ConfPollInterval = "pollInterval"

// ConfConfigPath is the config key for the directory holding the optional yaml config file
const ConfConfigPath = "configPath"
