package chain

// subsidyABI covers the five mutating entry points of the subsidy contract.
// The contract itself is deployed out of band; its address comes from config.
const subsidyABI = `[
  {
    "name": "createProgram",
    "type": "function",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "programId", "type": "bytes32"},
      {"name": "ratePerKwh", "type": "uint256"}
    ],
    "outputs": []
  },
  {
    "name": "approveProject",
    "type": "function",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "projectId", "type": "bytes32"}
    ],
    "outputs": []
  },
  {
    "name": "defineMilestone",
    "type": "function",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "milestoneId", "type": "bytes32"},
      {"name": "amount", "type": "uint256"}
    ],
    "outputs": []
  },
  {
    "name": "attestMilestone",
    "type": "function",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "milestoneId", "type": "bytes32"},
      {"name": "value", "type": "uint256"},
      {"name": "dataHash", "type": "bytes32"},
      {"name": "deadline", "type": "uint256"},
      {"name": "nonce", "type": "uint256"},
      {"name": "signature", "type": "bytes"}
    ],
    "outputs": []
  },
  {
    "name": "releasePayment",
    "type": "function",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "projectId", "type": "bytes32"},
      {"name": "milestoneId", "type": "bytes32"}
    ],
    "outputs": []
  }
]`
